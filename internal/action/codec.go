package action

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

// MaxCallbackData is the Telegram limit for callback_data, in bytes.
const MaxCallbackData = 64

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrNotCallback     = errors.New("action is not a button")
	ErrPayloadMismatch = errors.New("payload does not match action")
	ErrBadPayload      = errors.New("malformed payload")
	ErrTooLong         = errors.New("callback data too long")
)

type button struct {
	code   string
	entity Entity
}

// buttons lists every button kind with its wire code and the entity it targets.
var buttons = map[Kind]button{
	StoreOpen:      {"st", EntityNone},
	StoreProduct:   {"sp", EntityProduct},
	SelectPlan:     {"pl", EntityPlan},
	PayUpload:      {"pu", EntityNone},
	CancelPurchase: {"cp", EntityNone},
	BackToMain:     {"bm", EntityNone},
	SubsHistory:    {"sh", EntityNone},
	CheckChannel:   {"cc", EntityNone},

	MaterialProducts: {"mp", EntityNone},
	MaterialList:     {"ml", EntityProduct},
	MaterialGet:      {"mg", EntityMaterial},

	ReferralLink:    {"rl", EntityNone},
	ReferralBalance: {"rb", EntityNone},
	WithdrawStart:   {"ws", EntityNone},
	WithdrawHistory: {"wh", EntityNone},
	WithdrawConfirm: {"wc", EntityNone},
	WithdrawCancel:  {"wx", EntityNone},

	SettingsEmail: {"se", EntityNone},

	ApprovePayment:     {"ap", EntityPayment},
	RejectPayment:      {"rp", EntityPayment},
	ApproveWithdrawal:  {"aw", EntityWithdrawal},
	RejectWithdrawal:   {"rw", EntityWithdrawal},
	AdminPayments:      {"ay", EntityNone},
	PaymentsFilter:     {"pf", EntityPeriod},
	PaymentView:        {"pv", EntityPayment},
	PaymentsPending:    {"pp", EntityNone},
	WithdrawalsPending: {"wp", EntityNone},
	AdminBack:          {"ab", EntityNone},
	FlowCancel:         {"fx", EntityNone},

	ProductsList:         {"al", EntityNone},
	ProductView:          {"av", EntityProduct},
	ProductAdd:           {"aa", EntityNone},
	ProductEditDesc:      {"ed", EntityProduct},
	ProductEditPhoto:     {"ep", EntityProduct},
	ProductToggle:        {"tg", EntityProduct},
	ProductDelete:        {"dl", EntityProduct},
	ProductDeleteConfirm: {"dy", EntityProduct},
	ProductDeleteCancel:  {"dn", EntityProduct},

	PlanList:   {"ll", EntityProduct},
	PlanAdd:    {"la", EntityProduct},
	PlanDelete: {"ld", EntityPlan},

	PromoList:   {"ol", EntityPromoQuery},
	PromoAdd:    {"oa", EntityProduct},
	PromoDelete: {"od", EntityPromo},

	MaterialAdminList: {"il", EntityProduct},
	MaterialAdd:       {"ia", EntityProduct},
	MaterialDelete:    {"id", EntityMaterial},

	RequisitesEdit: {"re", EntityNone},

	BroadcastConfirm: {"bc", EntityNone},
	BroadcastCancel:  {"bx", EntityNone},
	BroadcastHistory: {"bh", EntityNone},
}

var byCode = func() map[string]Kind {
	m := make(map[string]Kind, len(buttons))
	for k, s := range buttons {
		m[s.code] = k
	}
	return m
}()

// IsButton reports whether kind can be carried by an inline button.
func IsButton(kind Kind) bool {
	_, ok := buttons[kind]
	return ok
}

// Encode renders a as callback data: "code" or "code:payload". Product names go
// last so they may contain the separator.
func Encode(a Action) (string, error) {
	s, ok := buttons[a.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotCallback, a.Kind)
	}
	var entity Entity
	if a.Payload != nil {
		entity = a.Payload.Entity()
	}
	if entity != s.entity {
		return "", fmt.Errorf("%w: %s", ErrPayloadMismatch, a.Kind)
	}

	var out string
	switch p := a.Payload.(type) {
	case nil:
		out = s.code
	case PaymentID:
		out = s.code + ":" + strconv.FormatInt(int64(p), 10)
	case WithdrawalID:
		out = s.code + ":" + strconv.FormatInt(int64(p), 10)
	case PlanID:
		out = s.code + ":" + strconv.FormatInt(int64(p), 10)
	case MaterialID:
		out = s.code + ":" + strconv.FormatInt(int64(p), 10)
	case PromoID:
		out = s.code + ":" + strconv.FormatInt(int64(p), 10)
	case ProductName:
		out = s.code + ":" + string(p)
	case PromoQuery:
		out = s.code + ":" + string(types.ParsePromoFilter(string(p.Filter))) + ":" + p.Product
	case PaymentsPeriod:
		out = s.code + ":" + string(types.ParsePeriod(string(p.Period)))
	default:
		return "", fmt.Errorf("%w: %T", ErrPayloadMismatch, a.Payload)
	}
	if len(out) > MaxCallbackData {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLong, len(out))
	}
	return out, nil
}

// Data encodes a button and logs failures. Callers use it for keyboards where the
// payload is known to fit.
func Data(kind Kind, payload Payload) string {
	data, err := Encode(New(kind, payload))
	if err != nil {
		log.Printf("Error encoding callback %s: %v", kind, err)
		return buttons[kind].code
	}
	return data
}

// Decode parses callback data produced by Encode.
func Decode(data string) (Action, error) {
	code, rest, hasRest := strings.Cut(strings.TrimSpace(data), ":")
	kind, ok := byCode[code]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}
	s := buttons[kind]

	if s.entity == EntityNone {
		if hasRest {
			return Action{}, fmt.Errorf("%w: %q", ErrBadPayload, data)
		}
		return New(kind, nil), nil
	}
	if !hasRest || rest == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrBadPayload, data)
	}

	switch s.entity {
	case EntityProduct:
		return New(kind, ProductName(rest)), nil
	case EntityPromoQuery:
		filter, product, ok := strings.Cut(rest, ":")
		if !ok || product == "" {
			return Action{}, fmt.Errorf("%w: %q", ErrBadPayload, data)
		}
		return New(kind, PromoQuery{Product: product, Filter: types.ParsePromoFilter(filter)}), nil
	case EntityPeriod:
		return New(kind, PaymentsPeriod{Period: types.ParsePeriod(rest)}), nil
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return Action{}, fmt.Errorf("%w: %q", ErrBadPayload, data)
	}
	switch s.entity {
	case EntityPayment:
		return New(kind, PaymentID(id)), nil
	case EntityWithdrawal:
		return New(kind, WithdrawalID(id)), nil
	case EntityPlan:
		return New(kind, PlanID(id)), nil
	case EntityMaterial:
		return New(kind, MaterialID(id)), nil
	case EntityPromo:
		return New(kind, PromoID(id)), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrBadPayload, data)
}
