package server

import (
	"bytes"
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("popup").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>tabShot</title>
<style>
  body { font-family: sans-serif; width: 420px; margin: 12px auto; }
  #screenshotContainer div { position: relative; margin: 8px 0; cursor: grab; transition: transform .1s; }
  #screenshotContainer img { display: block; width: 100%; }
  #screenshotContainer button { position: absolute; top: 4px; right: 4px; }
  .hidden { display: none; }
</style>
</head>
<body>
<form id="tab">
  <input name="url" type="url" placeholder="https://" value="{{.URL}}">
  <button type="submit">Open</button>
</form>
<h1 id="title"{{if not .TitleVisible}} class="hidden"{{end}}>No screenshots yet</h1>
<button id="capture">Capture</button>
<div id="screenshotContainer">
{{- range .Items}}
<div draggable="true" data-index="{{.Index}}" style="transform: scale({{.Scale}})"><img src="{{.Src}}"><button>Delete</button></div>
{{- end}}
</div>
<button id="download"{{if not .ExportVisible}} class="hidden"{{end}}>Download PDF</button>
<p id="loader"{{if not .Loading}} class="hidden"{{end}}>Generating PDF...</p>
<script>
(function () {
  const container = document.getElementById("screenshotContainer");
  // Requests run one at a time, in the order the events fired.
  let queue = Promise.resolve();
  const post = (path, body) => {
    queue = queue.then(() => fetch(path, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: body ? JSON.stringify(body) : undefined,
    })).catch(() => {});
    return queue;
  };
  const index = (e) => {
    const item = e.target.closest("[data-index]");
    return item ? item.dataset.index : null;
  };
  const reload = () => location.reload();

  document.getElementById("tab").addEventListener("submit", (e) => {
    e.preventDefault();
    post("/tab", {url: e.target.url.value}).then(reload);
  });
  document.getElementById("capture").addEventListener("click", () => post("/capture").then(reload));
  document.getElementById("download").addEventListener("click", () => {
    const loader = document.getElementById("loader");
    loader.classList.remove("hidden");
    fetch("/export")
      .then((r) => r.ok ? r.blob() : Promise.reject(r.statusText))
      .then((blob) => {
        const a = document.createElement("a");
        a.href = URL.createObjectURL(blob);
        a.download = "{{.Filename}}";
        a.click();
        URL.revokeObjectURL(a.href);
      })
      .finally(() => loader.classList.add("hidden"));
  });

  container.addEventListener("click", (e) => {
    const i = index(e);
    if (e.target.tagName === "BUTTON" && i !== null) post("/items/" + i + "/delete").then(reload);
  });
  let from = null, before = null;
  container.addEventListener("dragstart", (e) => {
    const i = index(e);
    if (i === null) return;
    e.dataTransfer.setData("text/plain", "screenshot");
    e.target.closest("[data-index]").style.transform = "scale(1.1)";
    from = Number(i);
    before = null;
  });
  container.addEventListener("dragenter", (e) => {
    const i = index(e);
    if (i !== null) before = Number(i);
  });
  container.addEventListener("dragover", (e) => e.preventDefault());
  container.addEventListener("drop", (e) => {
    e.preventDefault();
    if (from === null || e.dataTransfer.getData("text/plain") !== "screenshot") return;
    const count = container.querySelectorAll("[data-index]").length;
    post("/drag/move", {from: from, before: before === null ? count : before});
  });
  container.addEventListener("dragend", () => {
    from = before = null;
    post("/drag/end").then(reload);
  });
})();
</script>
</body>
</html>
`))

type pageItem struct {
	Index int
	Src   template.URL
	Scale float64
}

type pageData struct {
	URL           string
	TitleVisible  bool
	ExportVisible bool
	Loading       bool
	Filename      string
	Items         []pageItem
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	st := s.state()
	data := pageData{
		URL:           st.URL,
		TitleVisible:  st.TitleVisible,
		ExportVisible: st.ExportVisible,
		Loading:       st.Loading,
		Filename:      s.board.Layout().Filename,
		Items:         make([]pageItem, len(st.Items)),
	}
	for i, it := range st.Items {
		// Board items are validated image data URLs.
		data.Items[i] = pageItem{Index: it.Index, Src: template.URL(it.Src), Scale: it.Scale}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
