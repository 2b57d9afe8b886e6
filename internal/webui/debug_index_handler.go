package webui

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"smartbizmap.kr/internal/pipeline"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// dataTypes lists the views the debug page can dump.
var dataTypes = []string{
	"status", "diagnostics", "entities", "industries", "ranking", "heat",
	"registry_entities", "registry_industries", "area_aliases", "industry_aliases", "overrides",
}

type debugData struct {
	Title string
	Pre   string
	Links []string
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   dumpConfig.Sdump(data),
		Links: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// snapshotQuery reads the optional industry and budget parameters.
func snapshotQuery(r *http.Request) pipeline.Query {
	params := r.URL.Query()
	q := pipeline.Query{Industry: strings.TrimSpace(params.Get("industry"))}
	if b, err := strconv.ParseFloat(params.Get("budget"), 64); err == nil {
		q.Budget = b
	}
	return q
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")
	reg := webUI.Registry

	var data interface{}
	var title string

	switch dataType {
	case "status":
		data = webUI.Pipeline.Status()
		title = "Pipeline - Status"
	case "diagnostics", "entities", "industries", "ranking", "heat":
		q := snapshotQuery(r)
		snap, err := webUI.Pipeline.Run(r.Context(), q)
		if err != nil {
			data = map[string]string{"error": err.Error()}
			title = "Pipeline - " + q.String()
			break
		}
		title = "Snapshot " + snap.Query.String() + " - " + dataType
		switch dataType {
		case "diagnostics":
			data = snap.Diagnostics
		case "entities":
			data = snap.Entities
		case "industries":
			data = snap.Industries
		case "ranking":
			data = snap.Ranking
		case "heat":
			data = snap.Heat
		}
	case "registry_entities":
		data = reg.Entities()
		title = "Registry - Entities"
	case "registry_industries":
		data = reg.Industries()
		title = "Registry - Industries"
	case "area_aliases":
		data = reg.AreaAliases()
		title = "Registry - Area Aliases"
	case "industry_aliases":
		data = reg.IndustryAliases()
		title = "Registry - Industry Aliases"
	case "overrides":
		data = reg.Overrides()
		title = "Registry - Overrides"
	default:
		data = map[string]string{
			"error": "Please use one of the following: " + strings.Join(dataTypes, ", ") + ".",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
