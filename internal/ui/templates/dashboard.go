package templates

import "retail-dashboard/internal/models"

const dateLayout = "2006-01-02"

var dashboardTabs = []struct{ id, label string }{
	{"sales", "Overall sales"},
	{"products", "Products"},
	{"channels", "Sales channels"},
}

// initialSignals are the dashboard controls plus empty chart slots the SSE
// handlers fill in.
func initialSignals(opts models.DatasetOptions) map[string]any {
	signals := map[string]any{
		"start":            "",
		"end":              "",
		"category":         first(opts.Categories),
		"channel":          first(opts.Channels),
		"day":              "Monday",
		"monthlySales":     []any{},
		"countrySales":     map[string]any{},
		"subcategorySales": []any{},
		"weekdaySales":     map[string]any{},
		"customerGenders":  map[string]any{},
		"channelSplit":     map[string]any{},
	}
	if !opts.MinDate.IsZero() {
		signals["start"] = opts.MinDate.Format(dateLayout)
		signals["end"] = opts.MaxDate.Format(dateLayout)
	}
	return signals
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

const pageStyle = `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6fa;color:#222}
header{padding:1rem 2rem;background:#1f2937;color:#fff}
header p{margin:0;opacity:.7}
.tabs{display:flex;gap:.5rem;padding:1rem 2rem}
.tabs button{border:0;padding:.5rem 1rem;border-radius:4px;background:#e5e7eb;cursor:pointer}
.tabs button.active{background:#2563eb;color:#fff}
section{padding:0 2rem 2rem}
.controls{display:flex;gap:1rem;align-items:center;margin-bottom:1rem}
.grid{display:grid;grid-template-columns:1fr 1fr;gap:1rem}
.chart{min-height:380px;background:#fff;border-radius:6px}
.status{font-size:.85rem;color:#6b7280;margin-bottom:.5rem}
.modern-table{border-collapse:collapse;width:100%;background:#fff;margin-top:1rem}
.modern-table th,.modern-table td{padding:.4rem .8rem;border-bottom:1px solid #e5e7eb;text-align:left}
</style>`

const chartScript = `<script>
function points(s){return (s&&s.points)||[]}
function drawStackedBars(id,series,title){
  if(!window.Plotly)return;
  Plotly.react(id,(series||[]).map(s=>({type:'bar',name:s.name,
    x:points(s).map(p=>p.label),y:points(s).map(p=>p.value),
    text:points(s).map(p=>p.text),hoverinfo:'text'})),{title:title,barmode:'stack'});
}
function drawMap(id,s){
  if(!window.Plotly)return;
  Plotly.react(id,[{type:'choropleth',locationmode:'country names',
    locations:points(s).map(p=>p.label),z:points(s).map(p=>p.value),
    colorbar:{title:'Sales'}}],{title:'Map'});
}
function drawHorizontalBars(id,series){
  if(!window.Plotly)return;
  Plotly.react(id,(series||[]).map(s=>({type:'bar',orientation:'h',name:s.name,
    y:points(s).map(p=>p.label),x:points(s).map(p=>p.value)})),{barmode:'stack'});
}
function drawBars(id,s){
  if(!window.Plotly)return;
  Plotly.react(id,[{type:'bar',x:points(s).map(p=>p.label),y:points(s).map(p=>p.value)}],
    {title:'Sales by weekday for '+((s&&s.name)||'')});
}
function drawPie(id,s){
  if(!window.Plotly)return;
  Plotly.react(id,[{type:'pie',labels:points(s).map(p=>p.label),values:points(s).map(p=>p.value)}],
    {title:(s&&s.name)||''});
}
</script>`
