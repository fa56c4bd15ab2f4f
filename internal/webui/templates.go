package webui

const keepTemplate = `{{define "keep"}}<input type="hidden" name="page" value="{{.Page}}">{{if .Sort}}<input type="hidden" name="sort" value="{{.Sort}}">{{if .Desc}}<input type="hidden" name="desc" value="1">{{end}}{{end}}{{end}}`

const indexTemplate = `{{define "index"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Video metadata editor</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 2px 6px; }
th a { text-decoration: none; color: inherit; }
td input[type=text] { border: none; width: 100%; min-width: 8rem; }
.alert { padding: 8px 12px; margin: 1rem 0; border: 1px solid #3c763d; background: #dff0d8; }
.alert.error { border-color: #a94442; background: #f2dede; }
.error-block { color: #a94442; margin: 1rem 0; }
.actions form { display: inline; }
.pages a { margin-right: 4px; }
.pages .current { font-weight: bold; }
</style>
</head>
<body>
<h1>Video metadata editor</h1>

<form id="upload" method="post" action="/upload" enctype="multipart/form-data">
  <label>Configuration file: <input type="file" name="config" accept=".yaml,.yml"></label>
  <button type="submit">Upload</button>
  {{if .UploadName}}<span class="upload-name">{{.UploadName}}</span>{{end}}
</form>

{{if .Alert.Open}}
<div id="alert" class="alert{{if .Alert.Error}} error{{end}}">
  <span class="message">{{.Alert.Message}}</span>
  <form method="post" action="/alert/dismiss" style="display:inline">{{template "keep" .Params}}<button type="submit">Dismiss</button></form>
</div>
{{end}}

{{if .Err}}
<div id="error" class="error-block">{{.Err}}</div>
{{else if .Loaded}}
<div class="actions">
  <form method="post" action="/rows/add">{{template "keep" .Params}}<button id="add-row" type="submit">Add row manually</button></form>
  <form method="post" action="/rows/missing">{{template "keep" .Params}}<button id="add-missing" type="submit">Add rows for missing files</button></form>
  <form method="post" action="/rows/select-all">{{template "keep" .Params}}<button id="select-all" type="submit">{{if .AllSelected}}Unselect all{{else}}Select all{{end}}</button></form>
  <form method="post" action="/rows/export">{{template "keep" .Params}}<button id="export" type="submit">Export selected rows</button></form>
</div>
<p class="summary">{{.Selected}} of {{.Total}} rows selected</p>

<table id="metadata">
<thead><tr><th></th>{{range .Headers}}<th data-col="{{.Name}}"><a href="{{.Href}}">{{.Name}}{{if .Sorted}}{{if .Desc}} &#9660;{{else}} &#9650;{{end}}{{end}}</a></th>{{end}}</tr></thead>
<tbody>
{{$p := .Params}}
{{range .Rows}}{{$row := .Index}}
<tr data-row="{{.Index}}"{{if .Selected}} class="selected"{{end}}>
  <td><form method="post" action="/rows/select">{{template "keep" $p}}<input type="hidden" name="row" value="{{.Index}}"><input type="hidden" name="on" value="{{if .Selected}}0{{else}}1{{end}}"><input type="checkbox" name="checked"{{if .Selected}} checked{{end}} onchange="this.form.submit()"></form></td>
  {{range .Cells}}<td data-col="{{.Col}}"><form method="post" action="/rows/edit">{{template "keep" $p}}<input type="hidden" name="row" value="{{$row}}"><input type="hidden" name="col" value="{{.Col}}"><input type="text" name="value" value="{{.Value}}" onchange="this.form.submit()"></form></td>{{end}}
</tr>
{{end}}
</tbody>
</table>
{{if .Pages}}<div class="pages">{{range .Pages}}{{if .Current}}<span class="current">{{.N}}</span> {{else}}<a href="{{.Href}}">{{.N}}</a>{{end}}{{end}}</div>{{end}}
{{end}}
</body>
</html>
{{end}}`
