package access

// MenuItem is one navigation entry. Roles nil means visible to all roles.
type MenuItem struct {
	Path    string `json:"path"`
	Label   string `json:"label"`
	Icon    string `json:"icon"`
	Section string `json:"section"`
	Roles   []Role `json:"-"`
}

// Menu is the static navigation of the web client.
var Menu = []MenuItem{
	{Path: AdminHomeRoute, Label: "管理ダッシュボード", Icon: "gauge", Section: "admin", Roles: AdminOnly},
	{Path: "/admin/clinics", Label: "医院管理", Icon: "building", Section: "admin", Roles: AdminOnly},
	{Path: "/admin/users", Label: "ユーザー管理", Icon: "users", Section: "admin", Roles: AdminOnly},
	{Path: "/admin/price-table", Label: "印刷価格表", Icon: "table", Section: "admin", Roles: AdminOnly},
	{Path: "/admin/print-orders", Label: "印刷注文管理", Icon: "printer", Section: "admin", Roles: AdminOnly},
	{Path: "/admin/competitors", Label: "競合医院データ", Icon: "map-pin", Section: "admin", Roles: AdminOnly},

	{Path: ClinicHomeRoute, Label: "ダッシュボード", Icon: "home", Section: "clinic"},
	{Path: "/clinic/monthly-data", Label: "月次データ", Icon: "calendar", Section: "clinic"},
	{Path: "/clinic/monthly-data/import", Label: "CSV取込", Icon: "upload", Section: "clinic", Roles: Editors},
	{Path: "/clinic/market-analysis", Label: "診療圏分析", Icon: "map", Section: "clinic"},
	{Path: "/clinic/simulation", Label: "経営シミュレーション", Icon: "trending-up", Section: "clinic", Roles: Editors},
	{Path: "/clinic/reports", Label: "レポート", Icon: "file-text", Section: "clinic"},
	{Path: "/clinic/print-orders", Label: "印刷物注文", Icon: "shopping-cart", Section: "clinic", Roles: Editors},
	{Path: "/clinic/staff", Label: "スタッフ管理", Icon: "user-check", Section: "clinic", Roles: Owners},
	{Path: "/clinic/settings", Label: "医院設定", Icon: "settings", Section: "clinic", Roles: Owners},
}

// FilterMenu keeps the items role may see, preserving order.
func FilterMenu(items []MenuItem, role Role) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if Allowed(role, item.Roles) {
			out = append(out, item)
		}
	}
	return out
}
