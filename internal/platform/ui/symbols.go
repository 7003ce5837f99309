// internal/platform/ui/symbols.go
package ui

import "github.com/pterm/pterm"

// Status es el desenlace de un stage tal como se muestra en terminal.
type Status int

const (
	StatusSuccess Status = iota + 1 // resultado guardado
	StatusEmpty                     // terminó sin datos, no se guarda clave
	StatusError
)

type statusLook struct {
	name   string
	symbol string
	color  pterm.Color
}

var statusLooks = map[Status]statusLook{
	StatusSuccess: {"success", "✓", pterm.FgGreen},
	StatusEmpty:   {"empty", "○", pterm.FgYellow},
	StatusError:   {"error", "✗", pterm.FgRed},
}

func (s Status) look() statusLook {
	if l, ok := statusLooks[s]; ok {
		return l
	}
	return statusLook{"unknown", "?", pterm.FgDefault}
}

func (s Status) String() string { return s.look().name }

// Symbol retorna el símbolo Unicode del estado.
func (s Status) Symbol() string { return s.look().symbol }

// Style retorna el estilo pterm del estado.
func (s Status) Style() *pterm.Style { return pterm.NewStyle(s.look().color) }

// Iconos de cabecera y resumen
const (
	IconTarget  = "🎯"
	IconStage   = "🔄"
	IconTime    = "⏱"
	IconReport  = "📄"
	IconSuccess = "✓"
	IconError   = "✗"
)

// SeparatorHeavy delimita el resumen final.
const SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
