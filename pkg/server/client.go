package server

import (
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<nav>{{range .Components}}<a href="/?component={{.}}">{{.}}</a> {{end}}</nav>
<div id="kinesis-root"></div>
<script>{{.Script}}</script>
</body>
</html>
`))

type pageData struct {
	Title      string
	Components []string
	Script     template.JS
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("component")
	if name == "" {
		name = s.config.DefaultComponent
	}
	if _, ok := s.factories[name]; !ok {
		http.Error(w, "unknown component", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	err := pageTemplate.Execute(w, pageData{
		Title:      s.config.Title,
		Components: s.Components(),
		Script:     template.JS(clientScript),
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

// clientScript mirrors the server document into #kinesis-root and reports
// events back. It speaks the frame format of pkg/protocol.
const clientScript = `
(function () {
  var root = document.getElementById("kinesis-root");
  var params = new URLSearchParams(location.search);
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var url = scheme + location.host + "/ws";
  if (params.get("component")) url += "?component=" + encodeURIComponent(params.get("component"));

  var ws = new WebSocket(url);
  ws.binaryType = "arraybuffer";
  var nodes = new Map();
  var seq = 0;

  function reader(buf) {
    var b = new Uint8Array(buf), p = 0;
    return {
      byte: function () { return b[p++]; },
      uvarint: function () {
        var v = 0, mul = 1, x;
        do { x = b[p++]; v += (x & 0x7f) * mul; mul *= 128; } while (x & 0x80);
        return v;
      },
      string: function () {
        var n = this.uvarint(), s = new TextDecoder().decode(b.subarray(p, p + n));
        p += n;
        return s;
      },
      u16: function () { var v = (b[p] << 8) | b[p + 1]; p += 2; return v; },
      bool: function () { return b[p++] === 1; }
    };
  }

  function uvarint(out, v) {
    while (v >= 0x80) { out.push((v & 0x7f) | 0x80); v = Math.floor(v / 128); }
    out.push(v);
  }

  function send(node, name) {
    var body = [];
    uvarint(body, ++seq);
    uvarint(body, node);
    var enc = new TextEncoder().encode(name);
    uvarint(body, enc.length);
    for (var i = 0; i < enc.length; i++) body.push(enc[i]);
    var frame = [0x01, 0, (body.length >> 8) & 0xff, body.length & 0xff].concat(body);
    ws.send(new Uint8Array(frame));
  }

  function apply(r) {
    r.uvarint();
    var count = r.uvarint();
    for (var i = 0; i < count; i++) {
      var op = r.byte(), id = r.uvarint(), node, parent, anchor;
      switch (op) {
      case 0x01: nodes.set(id, document.createElement(r.string())); break;
      case 0x02: nodes.set(id, document.createTextNode(r.string())); break;
      case 0x03: node = nodes.get(id); var t = r.string(); if (node) node.data = t; break;
      case 0x04:
        parent = nodes.get(r.uvarint());
        var a = r.uvarint();
        anchor = a ? nodes.get(a) : null;
        if (parent) parent.insertBefore(nodes.get(id), anchor || null);
        break;
      case 0x05:
        parent = nodes.get(r.uvarint());
        node = nodes.get(id);
        if (parent && node && node.parentNode === parent) parent.removeChild(node);
        break;
      case 0x06:
        var name = r.string();
        (function (id, name) {
          nodes.get(id).addEventListener(name, function () { send(id, name); });
        })(id, name);
        break;
      }
    }
  }

  ws.onmessage = function (msg) {
    var b = new Uint8Array(msg.data);
    var type = b[0], r = reader(b.subarray(4).slice().buffer);
    if (type === 0x00) {
      r.u16(); r.string(); r.string();
      nodes.set(r.uvarint(), root);
    } else if (type === 0x02) {
      apply(r);
    } else if (type === 0x05) {
      var code = r.string(), message = r.string();
      console.error("kinesis " + code + ": " + message);
    }
  };
})();
`
