package utils

import (
	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/go-telegram/bot/models"
)

// Button is an inline button carrying either callback data or a URL.
type Button struct {
	Text string
	Data string
	URL  string
}

func Btn(text string, kind action.Kind, payload action.Payload) Button {
	return Button{Text: text, Data: action.Data(kind, payload)}
}

func URLBtn(text, url string) Button {
	return Button{Text: text, URL: url}
}

func (b Button) valid() bool {
	return b.Text != "" && (b.Data != "" || b.URL != "")
}

func (b Button) inline() models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data, URL: b.URL}
}

// BuildInlineKeyboard lays buttons out perRow per row. Buttons that could not be
// encoded are dropped.
func BuildInlineKeyboard(buttons []Button, perRow int) *models.InlineKeyboardMarkup {
	if perRow <= 0 {
		perRow = 1
	}
	rows := make([][]models.InlineKeyboardButton, 0)
	row := make([]models.InlineKeyboardButton, 0, perRow)
	for _, button := range buttons {
		if !button.valid() {
			continue
		}
		if len(row) == perRow {
			rows = append(rows, row)
			row = make([]models.InlineKeyboardButton, 0, perRow)
		}
		row = append(row, button.inline())
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// Rows builds a keyboard with one row per argument.
func Rows(rows ...[]Button) *models.InlineKeyboardMarkup {
	out := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]models.InlineKeyboardButton, 0, len(r))
		for _, button := range r {
			if button.valid() {
				row = append(row, button.inline())
			}
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: out}
}

func Row(buttons ...Button) []Button {
	return buttons
}

func ReplyKeyboard(rows ...[]string) *models.ReplyKeyboardMarkup {
	kb := make([][]models.KeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]models.KeyboardButton, 0, len(r))
		for _, text := range r {
			row = append(row, models.KeyboardButton{Text: text})
		}
		kb = append(kb, row)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       kb,
		ResizeKeyboard: true,
	}
}

func MainMenuKeyboard(admin bool) *models.ReplyKeyboardMarkup {
	rows := [][]string{
		{messages.BtnStore, messages.BtnSubscriptions},
		{messages.BtnReferral},
		{messages.BtnMaterials},
		{messages.BtnSupport, messages.BtnSettings},
		{messages.BtnMainMenu},
	}
	if admin {
		rows = append(rows, []string{messages.BtnAdminPanel})
	}
	return ReplyKeyboard(rows...)
}

func AdminMenuKeyboard() *models.ReplyKeyboardMarkup {
	return ReplyKeyboard(
		[]string{messages.BtnAdminProducts, messages.BtnAdminRequisites},
		[]string{messages.BtnAdminPayments, messages.BtnAdminBroadcast},
		[]string{messages.BtnAdminExit},
	)
}

// MenuKinds maps reply keyboard labels to the action they start.
var MenuKinds = map[string]action.Kind{
	messages.BtnStore:           action.MenuStore,
	messages.BtnSubscriptions:   action.MenuSubscriptions,
	messages.BtnReferral:        action.MenuReferral,
	messages.BtnMaterials:       action.MenuMaterials,
	messages.BtnSupport:         action.MenuSupport,
	messages.BtnSettings:        action.MenuSettings,
	messages.BtnMainMenu:        action.MenuMain,
	messages.BtnAdminPanel:      action.AdminMenu,
	messages.BtnAdminProducts:   action.AdminProducts,
	messages.BtnAdminRequisites: action.AdminRequisites,
	messages.BtnAdminPayments:   action.AdminPayments,
	messages.BtnAdminBroadcast:  action.AdminBroadcast,
	messages.BtnAdminExit:       action.AdminExit,
}
