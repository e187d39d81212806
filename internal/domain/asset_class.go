package domain

// Asset class labels keyed by warehouse asset-class id.
var assetClasses = map[int64]string{
	0: "No aplica",
	1: "Deuda",
	2: "Renta Variable",
	3: "Notas Estructuradas",
	4: "Alternativo",
	5: "Productos",
	6: "Todos los Activos",
	7: "Derivados",
}

// AssetClassUnknown labels missing or unrecognized asset-class ids.
const AssetClassUnknown = "Desconocido"

// AssetClassLabel returns the display label of an asset-class id.
func AssetClassLabel(id *int64) string {
	if id == nil {
		return AssetClassUnknown
	}
	if label, ok := assetClasses[*id]; ok {
		return label
	}
	return AssetClassUnknown
}
