package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/config"
	"github.com/BatmanBruc/bat-bot-shop/internal/contextkeys"
	"github.com/BatmanBruc/bat-bot-shop/internal/membership"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/BatmanBruc/bat-bot-shop/types"
)

func TestMessageKind(t *testing.T) {
	tests := []struct {
		msgType contextkeys.MessageType
		text    string
		want    action.Kind
	}{
		{contextkeys.MessageTypeCommand, "/start r_1", action.Start},
		{contextkeys.MessageTypeCommand, "/cancel@shop_bot", action.Cancel},
		{contextkeys.MessageTypeCommand, "/admin", action.AdminMenu},
		{contextkeys.MessageTypeCommand, "/menu", action.MenuMain},
		{contextkeys.MessageTypeCommand, "/unknown", action.Unknown},
		{contextkeys.MessageTypeCommand, "", action.Unknown},
		{contextkeys.MessageTypePhoto, "", action.Photo},
		{contextkeys.MessageTypeDocument, "", action.Document},
		{contextkeys.MessageTypeVideo, "", action.Video},
		{contextkeys.MessageTypeText, messages.BtnStore, action.MenuStore},
		{contextkeys.MessageTypeText, messages.BtnAdminPanel, action.AdminMenu},
		{contextkeys.MessageTypeText, "hello", action.Text},
		{contextkeys.MessageTypeUnknown, "", action.Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, messageKind(tt.msgType, tt.text), "%s %q", tt.msgType, tt.text)
	}
}

func TestBuildHistory(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 10)

	subs := []types.Subscription{
		{Product: "Go", Tariff: "Month", EndDate: &future, Active: true},
		{Product: "SQL", Tariff: "Week", EndDate: &past, Active: true},
	}
	payments := []types.Payment{
		{ID: 5, Product: "Go", Tariff: "Month", Status: types.PaymentCompleted, PromoCode: "NEWEST"},
		{ID: 4, Product: "SQL", Tariff: "Week", Status: types.PaymentCompleted, PromoCode: "SQL1"},
		{ID: 3, Product: "SQL", Tariff: "Week", Status: types.PaymentCompleted, PromoCode: "SQL0"},
		{ID: 2, Product: "Rust", Tariff: "Year", Status: types.PaymentRejected},
		{ID: 1, Product: "Go", Tariff: "Month", Status: types.PaymentPending},
	}

	active, expired, rejected := buildHistory(subs, payments, now)

	require.Len(t, active, 1)
	assert.Contains(t, active[0], "Go")
	assert.Contains(t, active[0], "NEWEST")

	require.Len(t, expired, 1)
	assert.Contains(t, expired[0], "SQL")
	assert.Contains(t, expired[0], "SQL1")

	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0], "Rust")
}

func TestChanged(t *testing.T) {
	s := &types.Session{State: types.StateIdle}
	before := snapshot(s)
	assert.False(t, changed(before, s))

	s.Set(types.KeyPhone, "+79990000000")
	assert.True(t, changed(before, s))

	before = snapshot(s)
	s.Transition(types.StateWithdrawEnterBank)
	assert.True(t, changed(before, s))
}

func TestRoutesCoverEveryButton(t *testing.T) {
	h := NewHandlers(nil, nil, membership.NewChecker(""), nil, &config.Config{})
	for kind := action.Kind(0); kind <= action.BroadcastHistory; kind++ {
		if !action.IsButton(kind) {
			continue
		}
		found := h.router.Has(types.StateIdle, kind)
		for _, state := range []types.ChatState{
			types.StatePurchaseUploadCheck,
			types.StateAdminConfirmDeletion,
			types.StateAdminBroadcastConfirm,
			types.StateWithdrawConfirm,
		} {
			found = found || h.router.Has(state, kind)
		}
		assert.True(t, found, "no route for button %s", kind)
	}
	for _, kind := range utils.MenuKinds {
		assert.True(t, h.router.Has(types.StateIdle, kind), "no route for menu %s", kind)
	}
}

// fakeTelegram records outgoing Bot API calls per chat. Captions are kept
// with texts; photo file ids are kept separately.
type fakeTelegram struct {
	mu      sync.Mutex
	texts   map[int64][]string
	photos  map[int64][]string
	answers []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseMultipartForm(1 << 20)
	method := path.Base(r.URL.Path)
	chatID, _ := strconv.ParseInt(r.FormValue("chat_id"), 10, 64)

	f.mu.Lock()
	switch strings.ToLower(method) {
	case "answercallbackquery":
		f.answers = append(f.answers, r.FormValue("text"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		return
	case "sendphoto":
		f.photos[chatID] = append(f.photos[chatID], r.FormValue("photo"))
		f.texts[chatID] = append(f.texts[chatID], r.FormValue("caption"))
	default:
		text := r.FormValue("text")
		if text == "" {
			text = r.FormValue("caption")
		}
		if text != "" {
			f.texts[chatID] = append(f.texts[chatID], text)
		}
	}
	f.mu.Unlock()
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":` +
		strconv.FormatInt(chatID, 10) + `,"type":"private"}}}`))
}

func (f *fakeTelegram) sent(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts[chatID]...)
}

func (f *fakeTelegram) sentPhotos(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.photos[chatID]...)
}

func (f *fakeTelegram) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.answers...)
}

func (f *fakeTelegram) last(chatID int64) string {
	msgs := f.sent(chatID)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// fakeShop implements the store calls the tested flows make.
type fakeShop struct {
	types.ShopStore
	mu          sync.Mutex
	user        types.User
	withdrawals []types.WithdrawalRequest
	plans       map[int64]types.Plan
	payments    map[int64]*types.Payment
	lastPayment int64
	cancelled   []int64
	promos      []types.PromoCode
	settings    map[string]string
}

func (f *fakeShop) GetUserByID(_ context.Context, id int64) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.user.ID {
		return nil, store.ErrNotFound
	}
	u := f.user
	return &u, nil
}

func (f *fakeShop) SetUserEmail(_ context.Context, _ int64, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user.Email = email
	return nil
}

func (f *fakeShop) CreateWithdrawal(_ context.Context, userID, amount, minAmount int64, phone, bank string) (*types.WithdrawalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if amount < minAmount {
		return nil, store.ErrBelowMinimum
	}
	if amount > f.user.ReferralBalance {
		return nil, store.ErrInsufficientBalance
	}
	f.user.ReferralBalance -= amount
	w := types.WithdrawalRequest{
		ID: int64(len(f.withdrawals) + 1), UserID: userID, Amount: amount,
		Status: types.WithdrawalPending, Phone: phone, Bank: bank, RequestDate: time.Now(),
	}
	f.withdrawals = append(f.withdrawals, w)
	return &w, nil
}

func (f *fakeShop) payment(id int64) types.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		return *p
	}
	return types.Payment{}
}

func (f *fakeShop) Checkout(_ context.Context, userID, planID int64) (*types.CheckoutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[planID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if plan.Price == 0 {
		return &types.CheckoutResult{Plan: plan, Subscription: &types.Subscription{UserID: userID, Product: plan.Product, Tariff: plan.Name, Active: true}}, nil
	}
	f.lastPayment++
	p := &types.Payment{
		ID: f.lastPayment, UserID: userID, Product: plan.Product, Tariff: plan.Name,
		Email: f.user.Email, Price: plan.Price, Status: types.PaymentPending, PlanID: &plan.ID, CreatedAt: time.Now(),
	}
	f.payments[p.ID] = p
	return &types.CheckoutResult{Payment: *p, Plan: plan}, nil
}

// pending returns a pending payment owned by userID. Callers hold mu.
func (f *fakeShop) pending(paymentID, userID int64) (*types.Payment, error) {
	p, ok := f.payments[paymentID]
	if !ok || p.UserID != userID {
		return nil, store.ErrNotFound
	}
	if p.Status != types.PaymentPending {
		return nil, store.ErrInvalidTransition
	}
	return p, nil
}

func (f *fakeShop) SetPaymentEmail(_ context.Context, paymentID, userID int64, email string) (*types.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pending(paymentID, userID)
	if err != nil {
		return nil, err
	}
	p.Email = email
	out := *p
	return &out, nil
}

func (f *fakeShop) AttachCheck(_ context.Context, paymentID, userID int64, fileID string) (*types.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pending(paymentID, userID)
	if err != nil {
		return nil, err
	}
	p.CheckFileID = fileID
	out := *p
	return &out, nil
}

func (f *fakeShop) CancelCheckout(_ context.Context, paymentID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pending(paymentID, userID)
	if err != nil || p.CheckFileID != "" {
		return store.ErrNotFound
	}
	delete(f.payments, paymentID)
	f.cancelled = append(f.cancelled, paymentID)
	return nil
}

func (f *fakeShop) GetSetting(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.settings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (f *fakeShop) GetPayment(_ context.Context, id int64) (*types.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeShop) decide(id int64, status types.PaymentStatus) (*types.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != types.PaymentPending {
		return nil, store.ErrInvalidTransition
	}
	p.Status = status
	return p, nil
}

func (f *fakeShop) CompletePayment(_ context.Context, id int64) (*types.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.decide(id, types.PaymentCompleted)
	if err != nil {
		return nil, err
	}
	c := &types.Completion{Subscription: &types.Subscription{UserID: p.UserID, Product: p.Product, Tariff: p.Tariff, Active: true}}
	for i := range f.promos {
		promo := &f.promos[i]
		if promo.Product == p.Product && promo.Status == types.PromoNotIssued {
			promo.Status = types.PromoIssued
			promo.PaymentID = &p.ID
			p.PromoCode = promo.Code
			issued := *promo
			c.Promo = &issued
			break
		}
	}
	c.Payment = *p
	return c, nil
}

func (f *fakeShop) RejectPayment(_ context.Context, id int64) (*types.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.decide(id, types.PaymentRejected)
	if err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (f *fakeShop) CreatePlan(_ context.Context, p types.Plan) (*types.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.plans) + 1)
	f.plans[p.ID] = p
	return &p, nil
}

func (f *fakeShop) AddPromoCodes(_ context.Context, product string, planID *int64, codes []string) (types.BulkAddResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool, len(f.promos))
	for _, p := range f.promos {
		seen[p.Code] = true
	}
	res := types.BulkAddResult{Duplicates: []string{}}
	for _, code := range codes {
		if seen[code] {
			res.Duplicates = append(res.Duplicates, code)
			continue
		}
		seen[code] = true
		f.promos = append(f.promos, types.PromoCode{
			ID: int64(len(f.promos) + 1), Product: product, PlanID: planID, Code: code, Status: types.PromoNotIssued,
		})
		res.Added++
	}
	return res, nil
}

const (
	userChat  = 555
	adminChat = 900
)

type harness struct {
	t        *testing.T
	h        *Handlers
	bot      *bot.Bot
	tg       *fakeTelegram
	shop     *fakeShop
	sessions *store.RedisSessionStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tg := &fakeTelegram{texts: map[int64][]string{}, photos: map[int64][]string{}}
	srv := httptest.NewServer(tg)
	t.Cleanup(srv.Close)

	b, err := bot.New("test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client, err := store.NewRedisClient(context.Background(), mr.Addr(), "", 0, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	sessions := store.NewRedisSessionStore(client, 1)

	shop := &fakeShop{
		user:     types.User{ID: 1, TelegramID: userChat, Username: "buyer", ReferralBalance: 80000},
		plans:    map[int64]types.Plan{},
		payments: map[int64]*types.Payment{},
		settings: map[string]string{},
	}
	cfg := &config.Config{AdminChatID: adminChat, MinWithdrawal: 50000}
	h := NewHandlers(shop, sessions, membership.NewChecker(""), nil, cfg)

	return &harness{t: t, h: h, bot: b, tg: tg, shop: shop, sessions: sessions}
}

func (hs *harness) session() *types.Session {
	s, err := hs.sessions.GetSession(context.Background(), userChat)
	require.NoError(hs.t, err)
	return s
}

func (hs *harness) dispatch(update *models.Update, msgType contextkeys.MessageType, admin bool, file *contextkeys.FileInfo) {
	hs.t.Helper()
	ctx := context.Background()
	user, err := hs.shop.GetUserByID(ctx, 1)
	require.NoError(hs.t, err)
	s := hs.session()
	s.ChatID = userChat

	ctx = contextkeys.WithUser(ctx, user)
	ctx = contextkeys.WithSession(ctx, s)
	ctx = contextkeys.WithAdmin(ctx, admin)
	ctx = contextkeys.WithMessageType(ctx, msgType)
	if update.CallbackQuery != nil {
		ctx = contextkeys.WithCallbackData(ctx, update.CallbackQuery.Data)
	}
	if file != nil {
		ctx = contextkeys.WithFileInfo(ctx, file)
	}
	hs.h.MainHandler(ctx, hs.bot, update)
}

func (hs *harness) text(text string) {
	hs.t.Helper()
	hs.say(text, false)
}

func (hs *harness) say(text string, admin bool) {
	hs.t.Helper()
	msgType := contextkeys.MessageTypeText
	if strings.HasPrefix(text, "/") {
		msgType = contextkeys.MessageTypeCommand
	}
	hs.dispatch(&models.Update{Message: &models.Message{
		ID:   10,
		From: &models.User{ID: userChat},
		Chat: models.Chat{ID: userChat},
		Text: text,
	}}, msgType, admin, nil)
}

func (hs *harness) photo(fileID string) {
	hs.t.Helper()
	hs.dispatch(&models.Update{Message: &models.Message{
		ID:    11,
		From:  &models.User{ID: userChat, FirstName: "Ivan"},
		Chat:  models.Chat{ID: userChat},
		Photo: []models.PhotoSize{{FileID: fileID, Width: 800, Height: 600}},
	}}, contextkeys.MessageTypePhoto, false, &contextkeys.FileInfo{FileType: contextkeys.MessageTypePhoto, FileID: fileID})
}

func (hs *harness) press(data string, admin bool) {
	hs.t.Helper()
	hs.dispatch(&models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb",
		From: models.User{ID: userChat},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 20, Chat: models.Chat{ID: userChat}},
		},
	}}, contextkeys.MessageTypeClickButton, admin, nil)
}

func TestWithdrawalFlow(t *testing.T) {
	hs := newHarness(t)

	hs.press(action.Data(action.WithdrawStart, nil), false)
	assert.Equal(t, types.StateWithdrawEnterAmount, hs.session().State)

	hs.text("100")
	assert.Equal(t, messages.WithdrawBelowMinimum(50000), hs.tg.last(userChat))
	assert.Equal(t, types.StateWithdrawEnterAmount, hs.session().State)

	hs.text("много")
	assert.Contains(t, hs.tg.last(userChat), "⚠️")
	assert.Equal(t, types.StateWithdrawEnterAmount, hs.session().State)

	hs.text("600,50")
	assert.Equal(t, types.StateWithdrawEnterPhone, hs.session().State)
	amount, ok := hs.session().GetInt64(types.KeyAmount)
	require.True(t, ok)
	assert.Equal(t, int64(60050), amount)

	hs.text("12345")
	assert.Equal(t, types.StateWithdrawEnterPhone, hs.session().State)

	hs.text("+7 999 123-45-67")
	assert.Equal(t, types.StateWithdrawEnterBank, hs.session().State)

	hs.text("Тинькофф")
	assert.Equal(t, types.StateWithdrawConfirm, hs.session().State)

	hs.press(action.Data(action.WithdrawConfirm, nil), false)
	assert.Equal(t, types.StateIdle, hs.session().State)
	assert.Empty(t, hs.session().Data)

	require.Len(t, hs.shop.withdrawals, 1)
	w := hs.shop.withdrawals[0]
	assert.Equal(t, int64(60050), w.Amount)
	assert.Equal(t, "+79991234567", w.Phone)
	assert.Equal(t, "Тинькофф", w.Bank)
	assert.Equal(t, int64(19950), hs.shop.user.ReferralBalance)

	assert.Equal(t, messages.WithdrawCreated(60050), hs.tg.last(userChat))
	assert.Len(t, hs.tg.sent(adminChat), 1)
}

func TestWithdrawalConfirmRepeatsPromptOnText(t *testing.T) {
	hs := newHarness(t)

	hs.press(action.Data(action.WithdrawStart, nil), false)
	hs.text("600")
	hs.text("+79991234567")
	hs.text("Тинькофф")
	require.Equal(t, types.StateWithdrawConfirm, hs.session().State)

	hs.text("да")
	assert.Equal(t, types.StateWithdrawConfirm, hs.session().State)
	assert.Equal(t, messages.WithdrawConfirm(60000, "+79991234567", "Тинькофф"), hs.tg.last(userChat))
	assert.Empty(t, hs.shop.withdrawals)

	hs.press(action.Data(action.WithdrawConfirm, nil), false)
	assert.Equal(t, types.StateIdle, hs.session().State)
	assert.Len(t, hs.shop.withdrawals, 1)
}

func TestWithdrawalCancelDropsData(t *testing.T) {
	hs := newHarness(t)

	hs.press(action.Data(action.WithdrawStart, nil), false)
	hs.text("500")
	require.Equal(t, types.StateWithdrawEnterPhone, hs.session().State)

	hs.text("/cancel")
	s := hs.session()
	assert.Equal(t, types.StateIdle, s.State)
	assert.Empty(t, s.Data)
	assert.Empty(t, hs.shop.withdrawals)
}

func TestSettingsEmailFlow(t *testing.T) {
	hs := newHarness(t)

	hs.press(action.Data(action.SettingsEmail, nil), false)
	assert.Equal(t, types.StateSettingsEmail, hs.session().State)

	hs.text("not-an-email")
	assert.Equal(t, types.StateSettingsEmail, hs.session().State)
	assert.Empty(t, hs.shop.user.Email)

	hs.text("buyer@example.com")
	assert.Equal(t, types.StateIdle, hs.session().State)
	assert.Equal(t, "buyer@example.com", hs.shop.user.Email)
	assert.Equal(t, messages.SettingsEmailSaved("buyer@example.com"), hs.tg.last(userChat))
}

func TestAdminButtonsDeniedToUsers(t *testing.T) {
	hs := newHarness(t)

	hs.press(action.Data(action.ApprovePayment, action.PaymentID(1)), false)
	hs.press("garbage", false)
	hs.text("/nope")

	assert.Equal(t, []string{messages.AccessDenied(), messages.ErrorInvalidButton()}, hs.tg.callbackAnswers())
	assert.Equal(t, messages.ErrorUnknownCommand(), hs.tg.last(userChat))
}
