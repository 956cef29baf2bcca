package item

// Catalogs lists the documentation sections in the fixed order the persister
// emits them. Items with an unknown or empty catalog fall into "Other".
var Catalogs = []string{
	"Logging",
	"Server",
	"Metadata and cluster management",
	"User, role, and privilege",
	"Query engine",
	"Loading and unloading",
	"Storage",
	"Shared-data",
	"Data Lake",
	"Other",
}

// catalogHeadings holds the localized section headings keyed by catalog, then
// language. English is the fallback for languages without a localization.
var catalogHeadings = map[string]map[string]string{
	"Logging":                         {"en": "Logging", "zh": "日志记录", "ja": "ロギング"},
	"Server":                          {"en": "Server", "zh": "服务器", "ja": "サーバー"},
	"Metadata and cluster management": {"en": "Metadata and cluster management", "zh": "元数据和集群管理", "ja": "メタデータとクラスタ管理"},
	"User, role, and privilege":       {"en": "User, role, and privilege", "zh": "用户、角色和权限", "ja": "ユーザー、役割、特権"},
	"Query engine":                    {"en": "Query engine", "zh": "查询引擎", "ja": "クエリエンジン"},
	"Loading and unloading":           {"en": "Loading and unloading", "zh": "加载和卸载", "ja": "ロードとアンロード"},
	"Storage":                         {"en": "Storage", "zh": "存储", "ja": "ストレージ"},
	"Shared-data":                     {"en": "Shared-data", "zh": "共享数据", "ja": "共有データ"},
	"Data Lake":                       {"en": "Data Lake", "zh": "数据湖", "ja": "データレイク"},
	"Other":                           {"en": "Other", "zh": "其他", "ja": "その他"},
}

// IsValidCatalog reports whether catalog is one of the known sections.
func IsValidCatalog(catalog string) bool {
	_, ok := catalogHeadings[catalog]
	return ok
}

// DefaultCatalog is the section for unclassified items.
const DefaultCatalog = "Other"

// CatalogHeading returns the localized heading for a catalog, falling back to
// English, then to the catalog key itself.
func CatalogHeading(catalog, lang string) string {
	langs, ok := catalogHeadings[catalog]
	if !ok {
		return catalog
	}
	if h, ok := langs[lang]; ok {
		return h
	}
	return langs["en"]
}
