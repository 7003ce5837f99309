// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

var (
	// StylePrimary: cabeceras y totales
	StylePrimary = pterm.NewRGB(255, 107, 53).ToRGBStyle()

	// StyleSecondary: texto secundario (run id)
	StyleSecondary = pterm.NewRGB(61, 61, 61).ToRGBStyle()
)
