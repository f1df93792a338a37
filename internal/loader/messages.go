package loader

// User facing texts shared by the front ends.
const (
	MsgLoading   = "Cargando publicacións..."
	MsgError     = "⚠️  Erro ao cargar os blogs"
	MsgErrorHint = "Ningunha fonte respondeu. Comproba a conexión e volve intentalo."
	MsgNoResults = "🔍 Non se atoparon resultados"
	MsgNoHint    = "Proba con outros filtros ou termos de busca"
	MsgEnd       = "Non hai máis publicacións"
)
