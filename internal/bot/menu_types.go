package bot

// MenuType represents different menu screens in the bot.
type MenuType string

const (
	MenuMain    MenuType = "main"
	MenuWorkers MenuType = "workers"
	MenuMore    MenuType = "more"
)

// Handler names resolved from reply keyboard buttons.
const (
	handlerDashboard  = "dashboard"
	handlerAttendance = "attendance"
	handlerWorkerList = "worker_list"
	handlerAddWorker  = "add_worker"
	handlerSearch     = "search"
	handlerReport     = "report"
	handlerInsight    = "insight"
	handlerLanguage   = "language"
	handlerBack       = "back"
)

// MenuButton represents a single button in a menu.
type MenuButton struct {
	TextKey string   // i18n key for button text
	Handler string   // Handler name, see the handler* constants
	SubMenu MenuType // If this button opens a submenu
}

// MenuDefinition represents a complete menu screen.
type MenuDefinition struct {
	Type     MenuType
	TitleKey string // i18n key for menu title (optional, sent as message)
	Buttons  []MenuButton
	Layout   []int // Button layout: [2, 2, 1] means 2+2+1 buttons per row
	HasBack  bool  // Whether to show back button
}

// MenuRegistry holds all menu definitions.
type MenuRegistry struct {
	menus map[MenuType]*MenuDefinition
	order []MenuType
}

// NewMenuRegistry creates and initializes the menu registry with all menu definitions.
func NewMenuRegistry() *MenuRegistry {
	registry := &MenuRegistry{
		menus: make(map[MenuType]*MenuDefinition),
	}

	registry.register(&MenuDefinition{
		Type:     MenuMain,
		TitleKey: "general.main_menu",
		Layout:   []int{2, 2, 2},
		Buttons: []MenuButton{
			{TextKey: "menu.dashboard", Handler: handlerDashboard},
			{TextKey: "menu.attendance", Handler: handlerAttendance},
			{TextKey: "menu.workers", SubMenu: MenuWorkers},
			{TextKey: "menu.report", Handler: handlerReport},
			{TextKey: "menu.insight", Handler: handlerInsight},
			{TextKey: "menu.more", SubMenu: MenuMore},
		},
	})
	registry.register(&MenuDefinition{
		Type:     MenuWorkers,
		TitleKey: "workers.menu_title",
		Layout:   []int{1, 2},
		HasBack:  true,
		Buttons: []MenuButton{
			{TextKey: "menu.worker_list", Handler: handlerWorkerList},
			{TextKey: "menu.add_worker", Handler: handlerAddWorker},
			{TextKey: "menu.search", Handler: handlerSearch},
		},
	})
	registry.register(&MenuDefinition{
		Type:     MenuMore,
		TitleKey: "more.title",
		Layout:   []int{1},
		HasBack:  true,
		Buttons: []MenuButton{
			{TextKey: "menu.language", Handler: handlerLanguage},
		},
	})

	return registry
}

func (r *MenuRegistry) register(def *MenuDefinition) {
	r.menus[def.Type] = def
	r.order = append(r.order, def.Type)
}

// Get retrieves a menu definition by type.
func (r *MenuRegistry) Get(menuType MenuType) *MenuDefinition {
	return r.menus[menuType]
}
