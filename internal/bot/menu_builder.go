package bot

import (
	"github.com/UnknownOlympus/hazira/internal/i18n"
	"gopkg.in/telebot.v4"
)

// MenuBuilder handles dynamic menu generation with i18n support.
type MenuBuilder struct {
	bot      *Bot
	registry *MenuRegistry
}

// NewMenuBuilder creates a new menu builder instance.
func NewMenuBuilder(bot *Bot) *MenuBuilder {
	return &MenuBuilder{
		bot:      bot,
		registry: NewMenuRegistry(),
	}
}

// Build generates a telebot.ReplyMarkup from a menu definition.
func (mb *MenuBuilder) Build(tCtx telebot.Context, menuType MenuType) *telebot.ReplyMarkup {
	menuDef := mb.registry.Get(menuType)
	if menuDef == nil {
		mb.bot.log.Error("Menu definition not found", "menuType", menuType)
		return mb.buildFallbackMenu(tCtx)
	}

	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rows := mb.buildRows(tCtx, menu, menuDef.Buttons, menuDef.Layout)

	if menuDef.HasBack {
		btnBack := menu.Text(mb.bot.t(tCtx, "menu.back"))
		rows = append(rows, menu.Row(btnBack))
	}

	menu.Reply(rows...)
	return menu
}

// buildRows creates telebot.Row slices based on button layout.
func (mb *MenuBuilder) buildRows(
	tCtx telebot.Context,
	menu *telebot.ReplyMarkup,
	buttons []MenuButton,
	layout []int,
) []telebot.Row {
	rows := make([]telebot.Row, 0, len(layout))
	buttonIdx := 0

	for _, rowSize := range layout {
		if buttonIdx >= len(buttons) {
			break
		}

		rowButtons := make([]telebot.Btn, 0, rowSize)
		for i := 0; i < rowSize && buttonIdx < len(buttons); i++ {
			rowButtons = append(rowButtons, menu.Text(mb.bot.t(tCtx, buttons[buttonIdx].TextKey)))
			buttonIdx++
		}
		rows = append(rows, menu.Row(rowButtons...))
	}

	// Handle remaining buttons if any
	for ; buttonIdx < len(buttons); buttonIdx++ {
		rows = append(rows, menu.Row(menu.Text(mb.bot.t(tCtx, buttons[buttonIdx].TextKey))))
	}

	return rows
}

// buildFallbackMenu creates a safe fallback menu in case of errors.
func (mb *MenuBuilder) buildFallbackMenu(tCtx telebot.Context) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnBack := menu.Text(mb.bot.t(tCtx, "menu.back"))
	menu.Reply(menu.Row(btnBack))
	return menu
}

// ShowMenu sends a menu to the user. The message is messageKey when set,
// the menu title otherwise.
func (mb *MenuBuilder) ShowMenu(tCtx telebot.Context, menuType MenuType, messageKey string) error {
	menu := mb.Build(tCtx, menuType)

	if messageKey == "" {
		if menuDef := mb.registry.Get(menuType); menuDef != nil {
			messageKey = menuDef.TitleKey
		}
	}

	mb.bot.metrics.SentMessages.WithLabelValues("text").Inc()
	return tCtx.Send(mb.bot.t(tCtx, messageKey), menu, telebot.ModeHTML)
}

// ResolveHandlerFromButtonText looks up which handler to call based on button text.
// Buttons are matched in every supported language so that a keyboard sent
// before a language change keeps working.
func (mb *MenuBuilder) ResolveHandlerFromButtonText(buttonText string) (string, MenuType) {
	for _, lang := range i18n.Languages {
		if buttonText == mb.bot.localizer.Get(lang, "menu.back") {
			return handlerBack, ""
		}
	}

	for _, menuType := range mb.registry.order {
		for _, btn := range mb.registry.Get(menuType).Buttons {
			for _, lang := range i18n.Languages {
				if buttonText == mb.bot.localizer.Get(lang, btn.TextKey) {
					return btn.Handler, btn.SubMenu
				}
			}
		}
	}

	return "", ""
}
