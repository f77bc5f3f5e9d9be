package lead

import (
	"fmt"
	"strings"

	"github.com/vield/calculadora/internal/catalog"
)

// Markdown renders a human summary of the lead for terminal display.
func Markdown(l Lead) string {
	var b strings.Builder

	title := "Presupuesto"
	if info, ok := catalog.Lookup(l.ReformaType); ok {
		title = fmt.Sprintf("%s %s", info.Icon, info.Label)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Trabajos\n\n")
	if len(l.Works) == 0 {
		b.WriteString("_Ninguno seleccionado_\n")
	}
	for _, w := range l.Works {
		fmt.Fprintf(&b, "- %s\n", w)
	}

	b.WriteString("\n## Medidas\n\n")
	b.WriteString("| Medida | Valor |\n|---|---|\n")
	for _, f := range catalog.MeasurementFields(l.ReformaType) {
		value := fmt.Sprintf("%d", l.Measurements[f.ID])
		if f.Unit != "" {
			value += " " + f.Unit
		}
		fmt.Fprintf(&b, "| %s | %s |\n", f.Label, value)
	}

	b.WriteString("\n## Contacto\n\n")
	fmt.Fprintf(&b, "- **Nombre:** %s\n", orDash(l.Contact.Name))
	phone := orDash(l.Contact.Phone)
	if l.Contact.Phone != "" {
		phone = "+34 " + phone
	}
	fmt.Fprintf(&b, "- **Teléfono:** %s\n", phone)

	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
