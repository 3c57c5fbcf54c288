package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/sleepwake/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		switch {
		case days > 0:
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		case h > 0:
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		case m > 0:
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sleep/Wake</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: green; font-weight: bold; }
.idle { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.error { color: red; }
</style>
</head>
<body>
<h1>Sleep/Wake</h1>

<h2>State</h2>
<table>
<tr><th>Application</th><td id="state" class="{{.StateClass}}">{{.StateName}}</td></tr>
<tr><th>Last wake source</th><td id="wake">{{.WakeHex}}</td></tr>
<tr><th>Last wake reason</th><td>{{if .LastReason}}{{.LastReason}}{{else}}none{{end}}</td></tr>
<tr><th>Last cycle</th><td>{{if .LastCycleID}}{{.LastCycleID}}{{else}}none{{end}}</td></tr>
{{if .LastError}}<tr><th>Last error</th><td class="error">{{.LastError}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Active</th><td>{{.Counts.Active}}</td></tr>
<tr><th>Idle</th><td>{{.Counts.Idle}}</td></tr>
<tr><th>Sleep cycles</th><td>{{.Counts.SleepCycles}}</td></tr>
<tr><th>Button wakes</th><td>{{.Counts.ButtonWakes}}</td></tr>
<tr><th>Unknown wakes</th><td>{{.Counts.UnknownWakes}}</td></tr>
<tr><th>Boundary errors</th><td>{{.Counts.BoundaryErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Active timeout</th><td>{{.Config.ActiveDurationMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.HeartbeatMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>IRQ priority</th><td>{{.Config.IRQPriority}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type indexView struct {
	status.Snapshot
	Uptime     time.Duration
	StateName  string
	StateClass string
	WakeHex    string
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	v := indexView{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		StateName:  snap.State.String(),
		StateClass: "unknown",
		WakeHex:    fmt.Sprintf("0x%08x", uint32(snap.LastWake)),
	}
	switch v.StateName {
	case "ACTIVE":
		v.StateClass = "active"
	case "IDLE":
		v.StateClass = "idle"
	}
	return indexTmpl.Execute(w, v)
}
