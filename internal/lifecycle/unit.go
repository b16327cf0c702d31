package lifecycle

import (
	"bytes"
	"fmt"
	"text/template"
)

// systemd user unit template. Type=notify so systemd waits for the
// daemon's READY=1 before considering the start done.
const unitTemplate = `[Unit]
Description=ZScaler internet security watcher

[Service]
Type=notify
ExecStart={{.ExecPath}} run
Restart=on-failure
RestartSec=10

[Install]
WantedBy=default.target
`

// UnitParams feeds the unit template.
type UnitParams struct {
	ExecPath string
}

// RenderUnit generates the unit file content for the given daemon path.
func RenderUnit(params UnitParams) ([]byte, error) {
	tmpl, err := template.New("unit").Parse(unitTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, fmt.Errorf("failed to execute unit template: %w", err)
	}

	return buf.Bytes(), nil
}
