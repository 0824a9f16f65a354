package report

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"example.com/adifmerge/internal/adif"
	"example.com/adifmerge/internal/dedupe"
)

const htmlReport = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: #f4f7f6; padding: 20px; }
h1 { color: #2c3e50; }
.summary { background: white; padding: 15px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
table { width: 100%; border-collapse: collapse; background: white; box-shadow: 0 2px 15px rgba(0,0,0,0.1); }
th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
th { background-color: #34495e; color: white; }
tr:hover { background-color: #f1f1f1; }
.diff-container { display: flex; gap: 10px; font-size: 0.85em; }
.rec-box { background: #ebf5fb; padding: 10px; border-radius: 4px; border: 1px solid #aed6f1; flex: 1; }
.existing { background: #fef9e7; border-color: #f9e79f; }
.tag { font-weight: bold; color: #7f8c8d; }
.val { color: #2980b9; }
.file-info { display: block; margin-bottom: 8px; font-weight: bold; color: #2c3e50; border-bottom: 1px dashed #ccc; padding-bottom: 4px; }
.warn { background: #fdedec; border: 1px solid #f5b7b1; padding: 10px; border-radius: 4px; margin-top: 20px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="summary">
<p><strong>{{.Labels.GeneratedAt}}:</strong> {{.GeneratedAt}}</p>
<p><strong>{{.Labels.Sources}}:</strong> {{.Sources}}</p>
<p><strong>{{.Labels.Accepted}}:</strong> {{.Accepted}}</p>
<p><strong>{{.Labels.Duplicates}}:</strong> {{.Duplicates}}</p>
</div>
{{if .Rows}}<table>
<thead>
<tr><th>{{.Labels.Index}}</th><th>{{.Labels.Station}}</th><th>{{.Labels.Comparison}}</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.N}}</td>
<td><strong>{{.Group}}</strong></td>
<td>
<div class="diff-container">
<div class="rec-box">
<span class="file-info">{{$.Labels.IncomingFrom}}: {{.Incoming.Source}}</span>
<span class="tag">{{$.Labels.Call}}:</span> <span class="val">{{.Incoming.Call}}</span> |
<span class="tag">{{$.Labels.Band}}:</span> <span class="val">{{.Incoming.Band}}</span> |
<span class="tag">{{$.Labels.Mode}}:</span> <span class="val">{{.Incoming.Mode}}</span><br>
<span class="tag">{{$.Labels.Time}}:</span> <span class="val">{{.Incoming.When}}</span>
</div>
<div class="rec-box existing">
<span class="file-info">{{$.Labels.OriginalFrom}}: {{.Original.Source}}</span>
<span class="tag">{{$.Labels.Call}}:</span> <span class="val">{{.Original.Call}}</span> |
<span class="tag">{{$.Labels.Band}}:</span> <span class="val">{{.Original.Band}}</span> |
<span class="tag">{{$.Labels.Mode}}:</span> <span class="val">{{.Original.Mode}}</span><br>
<span class="tag">{{$.Labels.Time}}:</span> <span class="val">{{.Original.When}}</span>
</div>
</div>
</td>
</tr>
{{end}}</tbody>
</table>{{else}}<p>{{.Labels.NoDuplicates}}</p>{{end}}
{{if .Missing}}<div class="warn">
<p><strong>{{.Labels.MissingWarning}}:</strong></p>
{{range .Missing}}<p>{{.Source}}: {{.Count}}</p>
{{end}}</div>{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("dupes").Parse(htmlReport))

type recordView struct {
	Source string
	Call   string
	Band   string
	Mode   string
	When   string
}

type rowView struct {
	N        int
	Group    string
	Incoming recordView
	Original recordView
}

type missingView struct {
	Source string
	Count  int
}

type labelSet struct {
	GeneratedAt    string
	Sources        string
	Accepted       string
	Duplicates     string
	Index          string
	Station        string
	Comparison     string
	IncomingFrom   string
	OriginalFrom   string
	Call           string
	Band           string
	Mode           string
	Time           string
	NoDuplicates   string
	MissingWarning string
}

type htmlData struct {
	Title       string
	GeneratedAt string
	Sources     int
	Accepted    int
	Duplicates  int
	Rows        []rowView
	Missing     []missingView
	Labels      labelSet
}

// SaveDupeHTML renders the visual duplicate comparison report.
func SaveDupeHTML(out string, sum Summary, events []dedupe.Event, tr Translator) error {
	data := htmlData{
		Title:       tr.T("title"),
		GeneratedAt: sum.GeneratedAt.Format("2006-01-02 15:04:05"),
		Sources:     sum.Sources,
		Accepted:    sum.Accepted,
		Duplicates:  sum.Duplicates,
		Labels: labelSet{
			GeneratedAt:    tr.T("generatedAt"),
			Sources:        tr.T("sources"),
			Accepted:       tr.T("accepted"),
			Duplicates:     tr.T("duplicatesFound"),
			Index:          tr.T("colIndex"),
			Station:        tr.T("colStation"),
			Comparison:     tr.T("colComparison"),
			IncomingFrom:   tr.T("incomingFrom"),
			OriginalFrom:   tr.T("originalFrom"),
			Call:           tr.T("labelCall"),
			Band:           tr.T("labelBand"),
			Mode:           tr.T("labelMode"),
			Time:           tr.T("labelTime"),
			NoDuplicates:   tr.T("noDuplicates"),
			MissingWarning: tr.T("missingCallsignWarning"),
		},
	}
	for i, ev := range events {
		data.Rows = append(data.Rows, rowView{
			N:        i + 1,
			Group:    ev.Group,
			Incoming: viewOf(ev.Incoming, tr),
			Original: viewOf(ev.Original, tr),
		})
	}
	for _, source := range sortedKeys(sum.MissingCallsign) {
		data.Missing = append(data.Missing, missingView{Source: source, Count: sum.MissingCallsign[source]})
	}

	dir := filepath.Dir(out)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := htmlTemplate.Execute(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func viewOf(rec adif.Record, tr Translator) recordView {
	source := strings.TrimSpace(rec.Source)
	if source == "" {
		source = tr.T("unknownSource")
	}
	return recordView{
		Source: source,
		Call:   rec.Get(adif.TagCall),
		Band:   rec.Get(adif.TagBand),
		Mode:   rec.Get(adif.TagMode),
		When:   strings.TrimSpace(rec.Get(adif.TagQSODate) + " " + rec.Get(adif.TagTimeOn)),
	}
}
