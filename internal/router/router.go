package router

import (
	"context"
	"fmt"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnyState matches a kind regardless of the session state.
const AnyState types.ChatState = "*"

// Event is one incoming update after the user, session and action have been
// resolved.
type Event struct {
	Update     *models.Update
	ChatID     int64
	UserID     int64
	MessageID  int
	CallbackID string
	User       *types.User
	Session    *types.Session
	Action     action.Action
	Text       string
	FileID     string
	FileKind   string
	Admin      bool
	// Answered is set once the callback query has been answered.
	Answered   bool
}

func (e *Event) IsCallback() bool {
	return e.CallbackID != ""
}

type HandlerFunc func(ctx context.Context, b *bot.Bot, ev *Event)

type Route struct {
	State types.ChatState
	Kind  action.Kind
}

type entry struct {
	handler HandlerFunc
	admin   bool
}

// Router maps (state, kind) to a handler. An exact state match wins over AnyState.
type Router struct {
	routes   map[Route]entry
	notFound HandlerFunc
	denied   HandlerFunc
}

func New() *Router {
	return &Router{
		routes:   make(map[Route]entry),
		notFound: func(context.Context, *bot.Bot, *Event) {},
		denied:   func(context.Context, *bot.Bot, *Event) {},
	}
}

// Handle registers h for kind in state. Registering the same route twice panics.
func (r *Router) Handle(state types.ChatState, kind action.Kind, h HandlerFunc) {
	r.add(Route{State: state, Kind: kind}, entry{handler: h})
}

// HandleAdmin registers a handler that only allow-listed admins may reach.
func (r *Router) HandleAdmin(state types.ChatState, kind action.Kind, h HandlerFunc) {
	r.add(Route{State: state, Kind: kind}, entry{handler: h, admin: true})
}

func (r *Router) add(route Route, e entry) {
	if e.handler == nil {
		panic(fmt.Sprintf("router: nil handler for %s/%s", route.State, route.Kind))
	}
	if _, exists := r.routes[route]; exists {
		panic(fmt.Sprintf("router: duplicate route %s/%s", route.State, route.Kind))
	}
	r.routes[route] = e
}

// NotFound sets the handler for events no route matches.
func (r *Router) NotFound(h HandlerFunc) {
	r.notFound = h
}

// Denied sets the handler for admin routes reached by a non-admin.
func (r *Router) Denied(h HandlerFunc) {
	r.denied = h
}

func (r *Router) lookup(state types.ChatState, kind action.Kind) (entry, bool) {
	if e, ok := r.routes[Route{State: state, Kind: kind}]; ok {
		return e, true
	}
	e, ok := r.routes[Route{State: AnyState, Kind: kind}]
	return e, ok
}

// Has reports whether an event with kind in state would reach a handler.
func (r *Router) Has(state types.ChatState, kind action.Kind) bool {
	_, ok := r.lookup(state, kind)
	return ok
}

func (r *Router) Dispatch(ctx context.Context, b *bot.Bot, ev *Event) {
	state := types.StateIdle
	if ev.Session != nil {
		state = ev.Session.State
	}

	e, ok := r.lookup(state, ev.Action.Kind)
	switch {
	case !ok:
		r.notFound(ctx, b, ev)
	case e.admin && !ev.Admin:
		r.denied(ctx, b, ev)
	default:
		e.handler(ctx, b, ev)
	}
}
