package entity

// Categorías conocidas del catálogo. Un valor fuera de esta lista no es un
// error: se conserva tal cual y su etiqueta es el propio código (passthrough).
const (
	CategoryHogar     = "hogar"
	CategoryComida    = "comida"
	CategoryChucheria = "chucheria"
	CategoryBebidas   = "bebidas"
	CategoryOtros     = "otros"
)

var categoryLabels = map[string]string{
	CategoryHogar:     "Hogar",
	CategoryComida:    "Comida",
	CategoryChucheria: "Chuchería",
	CategoryBebidas:   "Bebidas",
	CategoryOtros:     "Otros",
}

// CategoryLabel etiqueta legible de una categoría; passthrough si no es conocida.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}
