package webmap

import "html/template"

var pageTemplate = template.Must(template.New("webmap").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body { margin: 0; padding: 0; height: 100%; }
  #map { width: 100%; height: 100%; }
  .legend {
    background: white;
    padding: 8px 12px;
    font: 12px/1.5 sans-serif;
    box-shadow: 0 0 8px rgba(0,0,0,0.3);
    border-radius: 4px;
  }
  .legend h4 { margin: 0 0 4px; font-size: 12px; }
  .legend i {
    display: inline-block;
    width: 14px; height: 14px;
    margin-right: 6px;
    vertical-align: middle;
    opacity: 0.85;
  }
</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], {{.Zoom}});

L.tileLayer({{.TileURL}}, {
  attribution: {{.Attribution}},
  maxZoom: 18
}).addTo(map);

var areas = {{.GeoJSON}};

L.geoJSON(areas, {
  style: function (feature) {
    return {
      fillColor: feature.properties.color,
      fillOpacity: 0.85,
      color: '#ffffff',
      opacity: 0.3,
      weight: 1
    };
  },
  onEachFeature: function (feature, layer) {
    layer.bindTooltip(feature.properties.tooltip, { sticky: true });
    layer.on('mouseover', function () { this.setStyle({ weight: 2, opacity: 0.9 }); });
    layer.on('mouseout', function () { this.setStyle({ weight: 1, opacity: 0.3 }); });
  }
}).addTo(map);

var legend = L.control({ position: 'bottomright' });
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
  div.innerHTML = '<h4>{{.MetricName}}</h4>' +
{{- range .Legend}}
    '<i style="background:{{.Color}}"></i>{{.Label}}<br>' +
{{- end}}
    '';
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`))
