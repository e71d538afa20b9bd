package webui

import "html/template"

// PageData is everything the page template renders
type PageData struct {
	Alerts              []string
	FileName            string
	Preview             template.URL
	ClassificationShown bool
	Classification      []string
	SimilarShown        bool
	Category            string
	Similar             []Thumbnail
	TextQuery           string
	TextShown           bool
	TextResults         []Thumbnail
}

// Thumbnail is one gallery cell
type Thumbnail struct {
	URL         string
	Alt         string
	Description string
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Image Search Application</title>
<style>
body { max-width: 800px; margin: auto; padding: 20px; font-family: sans-serif; }
section { margin-top: 20px; }
.alert { padding: 8px; margin-bottom: 8px; background: #fdecea; border: 1px solid #f5c2c0; }
.gallery { display: flex; flex-wrap: wrap; }
.gallery div { margin: 5px; text-align: center; width: 150px; }
.gallery img { width: 150px; height: 150px; object-fit: cover; }
</style>
</head>
<body>
<h1>Image Search Application</h1>

{{range .Alerts}}<div class="alert" role="alert">{{.}}</div>
{{end}}

<section>
<h2>Upload Image</h2>
<form method="post" action="/upload" enctype="multipart/form-data">
<input type="file" name="image" accept="image/*">
<button type="submit">Select</button>
<button type="submit" formaction="/classify">Classify Image</button>
<button type="submit" formaction="/similar">Search Similar Images</button>
</form>
{{if .Preview}}<div><img src="{{.Preview}}" alt="Selected" style="max-width: 300px; margin-top: 10px;"><p>{{.FileName}}</p></div>{{end}}
</section>

{{if .ClassificationShown}}
<section>
<h3>Classification Results:</h3>
<ul>
{{range .Classification}}<li>{{.}}</li>
{{end}}</ul>
</section>
{{end}}

{{if .SimilarShown}}
<section>
<h3>Similar Images in Category: {{.Category}}</h3>
<div class="gallery">
{{range .Similar}}<div><img src="{{.URL}}" alt="{{.Alt}}"><p>{{.Description}}</p></div>
{{end}}</div>
</section>
{{end}}

<section>
<h2>Text-Based Image Search</h2>
<form method="post" action="/search">
<input type="text" name="query" value="{{.TextQuery}}" placeholder="Enter search query">
<button type="submit">Search</button>
</form>
{{if .TextShown}}
<h3>Search Results:</h3>
<div class="gallery">
{{range .TextResults}}<div><img src="{{.URL}}" alt="{{.Alt}}"><p>{{.Description}}</p></div>
{{end}}</div>
{{end}}
</section>
</body>
</html>
`))
