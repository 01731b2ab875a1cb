package render

import (
	"bytes"
	"html/template"
	"io"
)

// LiveOptions configures the HTML page.
type LiveOptions struct {
	// SocketPath is the websocket path the page connects to for frames and
	// interaction. Empty produces a static page.
	SocketPath string
}

type pageData struct {
	Title      string
	Width      float64
	Height     float64
	SVG        template.HTML
	SocketPath string
}

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// WriteHTML writes a page embedding the SVG for sc. With a SocketPath the
// page replaces the drawing on every frame and reports hover and click back
// over the socket.
func WriteHTML(w io.Writer, sc *Scene, o LiveOptions) error {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sc); err != nil {
		return err
	}
	return pageTmpl.Execute(w, pageData{
		Title:      sc.Title,
		Width:      sc.Width,
		Height:     sc.Height,
		SVG:        template.HTML(buf.String()),
		SocketPath: o.SocketPath,
	})
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}Knowledge graph{{end}}</title>
<style>
  body { font-family: system-ui, -apple-system, sans-serif; margin: 24px; color: #111827; }
  h3 { font-size: 18px; font-weight: 600; margin: 0 0 12px; }
  #graph { max-width: {{.Width}}px; }
  #graph svg { width: 100%; height: auto; border-radius: 12px; }
  #status { font-size: 12px; color: #6B7280; margin-top: 8px; }
</style>
</head>
<body>
{{if .Title}}<h3>{{.Title}}</h3>{{end}}
<div id="graph">{{.SVG}}</div>
<div id="status"></div>
{{if .SocketPath}}<script>
(function () {
  var root = document.getElementById("graph");
  var status = document.getElementById("status");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + {{.SocketPath}});
  var hovered = null;

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }
  function nodeId(el) {
    var g = el && el.closest ? el.closest("[data-node-id]") : null;
    return g ? g.getAttribute("data-node-id") : null;
  }

  ws.onmessage = function (ev) {
    var m = JSON.parse(ev.data);
    switch (m.type) {
    case "frame":
    case "empty":
      root.innerHTML = m.svg;
      break;
    case "done":
      status.textContent = "Settled after " + m.ticks + " ticks";
      break;
    case "node_click":
      window.dispatchEvent(new CustomEvent("skillgraph:nodeclick", { detail: m.node }));
      break;
    case "error":
      status.textContent = m.message;
      break;
    }
  };
  ws.onclose = function () { status.textContent = "Disconnected"; };

  root.addEventListener("mouseover", function (e) {
    var id = nodeId(e.target);
    if (id && id !== hovered) {
      hovered = id;
      send({ type: "hover", id: id });
    }
  });
  root.addEventListener("mouseout", function (e) {
    var id = nodeId(e.target);
    if (id && nodeId(e.relatedTarget) !== id) {
      hovered = null;
      send({ type: "unhover", id: id });
    }
  });
  root.addEventListener("click", function (e) {
    var id = nodeId(e.target);
    if (id) send({ type: "click", id: id });
  });
})();
</script>{{end}}
</body>
</html>
`
