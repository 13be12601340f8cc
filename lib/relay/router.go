// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmed5528/masa-bot/lib/conversation"
	"github.com/ahmed5528/masa-bot/lib/identity"
	"github.com/ahmed5528/masa-bot/lib/redact"
)

// Defaults for RouterConfig.
const (
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 200
	MaxStaffMarkerLength = 256
)

// RouterConfig holds the Router's collaborators.
type RouterConfig struct {
	// Identities resolves bindings. Required.
	Identities identity.Store
	// Registrar creates bindings. Required.
	Registrar *identity.Registrar
	// Generator normalizes serials typed by staff. Required.
	Generator *identity.Generator
	// Conversations records relayed messages. Required.
	Conversations conversation.Log
	// Gate checks group membership. Required.
	Gate MembershipGate
	// Sender delivers messages. Required.
	Sender Sender
	// Roster lists the staff. Required.
	Roster *Roster

	// FormURL is the support request form. Required.
	FormURL string
	// StaffMarker opens staff messages delivered to users. Default:
	// DefaultStaffMarker.
	StaffMarker string
	// HistoryLimit is the default number of records /history shows.
	// Staff may ask for up to MaxHistoryLimit. Default:
	// DefaultHistoryLimit.
	HistoryLimit int
	// HintUnrelatedText answers bound users' unrelated text with a
	// hint instead of ignoring it.
	HintUnrelatedText bool

	// Redactor renders platform ids in log lines. Default: ephemeral key.
	Redactor *redact.Redactor
	// Logger receives routing decisions and failures. Default: discard.
	Logger *slog.Logger
}

// Router executes the relay's transition table.
type Router struct {
	identities    identity.Store
	registrar     *identity.Registrar
	generator     *identity.Generator
	conversations conversation.Log
	gate          MembershipGate
	sender        Sender
	roster        *Roster

	formURL       string
	staffMarker   string
	historyLimit  int
	hintUnrelated bool

	redactor *redact.Redactor
	logger   *slog.Logger
}

// NewRouter validates cfg and returns a Router.
func NewRouter(cfg RouterConfig) (*Router, error) {
	switch {
	case cfg.Identities == nil:
		return nil, fmt.Errorf("relay: Identities is required")
	case cfg.Registrar == nil:
		return nil, fmt.Errorf("relay: Registrar is required")
	case cfg.Generator == nil:
		return nil, fmt.Errorf("relay: Generator is required")
	case cfg.Conversations == nil:
		return nil, fmt.Errorf("relay: Conversations is required")
	case cfg.Gate == nil:
		return nil, fmt.Errorf("relay: Gate is required")
	case cfg.Sender == nil:
		return nil, fmt.Errorf("relay: Sender is required")
	case cfg.Roster == nil:
		return nil, fmt.Errorf("relay: Roster is required")
	case cfg.FormURL == "":
		return nil, fmt.Errorf("relay: FormURL is required")
	}

	staffMarker := cfg.StaffMarker
	if staffMarker == "" {
		staffMarker = DefaultStaffMarker
	}
	if len(staffMarker) > MaxStaffMarkerLength {
		return nil, fmt.Errorf("relay: StaffMarker longer than %d bytes", MaxStaffMarkerLength)
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit == 0 {
		historyLimit = DefaultHistoryLimit
	}
	if historyLimit < 1 || historyLimit > MaxHistoryLimit {
		return nil, fmt.Errorf("relay: HistoryLimit must be between 1 and %d, got %d", MaxHistoryLimit, historyLimit)
	}
	redactor := cfg.Redactor
	if redactor == nil {
		redactor = redact.Ephemeral()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Router{
		identities:    cfg.Identities,
		registrar:     cfg.Registrar,
		generator:     cfg.Generator,
		conversations: cfg.Conversations,
		gate:          cfg.Gate,
		sender:        cfg.Sender,
		roster:        cfg.Roster,
		formURL:       cfg.FormURL,
		staffMarker:   staffMarker,
		historyLimit:  historyLimit,
		hintUnrelated: cfg.HintUnrelatedText,
		redactor:      redactor,
		logger:        logger,
	}, nil
}

// Handle processes one event. It returns an error only when storage
// failed; every other outcome is reported to the sender in-band.
func (r *Router) Handle(ctx context.Context, event Event) error {
	facts, binding, err := r.gather(ctx, event)
	if err != nil {
		return err
	}
	action := Decide(event.Kind, facts)

	r.logger.Debug("routing event",
		r.redactor.User(event.SenderID),
		"kind", event.Kind.String(),
		"action", action.String(),
	)

	switch action {
	case ActionIgnore:
		return nil
	case ActionJoinPrompt:
		r.joinPrompt(ctx, event)
		return nil
	case ActionRegister:
		return r.register(ctx, event)
	case ActionShowSerial:
		r.showSerial(ctx, event, binding)
		return nil
	case ActionShowForm:
		r.respond(ctx, event, Outgoing{Text: formText(r.formURL, binding.Serial), Markdown: true})
		return nil
	case ActionFormUnbound:
		r.respond(ctx, event, Outgoing{Text: textFormUnbound})
		return nil
	case ActionHelp:
		text := textHelpUser
		if facts.Staff {
			text += textHelpStaff
		}
		r.respond(ctx, event, Outgoing{Text: text})
		return nil
	case ActionPromptRegister:
		r.respond(ctx, event, Outgoing{Text: textPromptRegister})
		return nil
	case ActionRelayToStaff:
		return r.relayToStaff(ctx, event, binding)
	case ActionHint:
		r.respond(ctx, event, Outgoing{Text: textHint})
		return nil
	case ActionStaffReply:
		return r.staffReply(ctx, event)
	case ActionReplyUsage:
		r.respond(ctx, event, Outgoing{Text: textReplyUsage})
		return nil
	case ActionHistory:
		return r.history(ctx, event)
	case ActionHistoryUsage:
		r.respond(ctx, event, Outgoing{Text: textHistoryUsage})
		return nil
	case ActionPermissionDenied:
		r.logger.Warn("staff command refused",
			r.redactor.User(event.SenderID),
			"kind", event.Kind.String(),
		)
		r.respond(ctx, event, Outgoing{Text: textPermissionDenied})
		return nil
	default:
		r.respond(ctx, event, Outgoing{Text: textUnknownCommand})
		return nil
	}
}

// ReportFailure tells the sender that their event could not be
// processed. Called by the dispatcher after Handle returns an error.
func (r *Router) ReportFailure(ctx context.Context, event Event) {
	r.send(ctx, event.SenderID, Outgoing{ChatID: event.ChatID, Text: textTemporaryFailure})
}

// gather collects the facts Decide needs for event. binding is the
// sender's binding when Facts.Bound is true.
func (r *Router) gather(ctx context.Context, event Event) (Facts, identity.Binding, error) {
	facts := Facts{
		Staff:         r.roster.Contains(event.SenderID),
		HintUnrelated: r.hintUnrelated,
		ArgCount:      len(event.Args()),
	}

	switch event.Kind {
	case KindStart, KindCheck, KindGetForm, KindText:
	default:
		return facts, identity.Binding{}, nil
	}

	binding, err := r.identities.LookupByUser(ctx, event.SenderID)
	switch {
	case err == nil:
		facts.Bound = true
	case errors.Is(err, identity.ErrNotFound):
	default:
		return Facts{}, identity.Binding{}, fmt.Errorf("relay: looking up sender: %w", err)
	}

	if !facts.Bound && (event.Kind == KindStart || event.Kind == KindCheck) {
		facts.Member = r.gate.IsMember(ctx, event.SenderID)
	}

	if facts.Bound && event.Kind == KindText {
		facts.QualifyingReply, err = r.qualifyingReply(ctx, event)
		if err != nil {
			return Facts{}, identity.Binding{}, err
		}
	}

	return facts, binding, nil
}

// qualifyingReply reports whether a text replies to a staff message the
// relay delivered. The replied-to message id is matched against the
// log first; the marker phrase covers messages with no recorded id.
func (r *Router) qualifyingReply(ctx context.Context, event Event) (bool, error) {
	target := event.ReplyTo
	if target == nil || !target.FromRelay {
		return false, nil
	}
	delivered, err := r.conversations.Delivered(ctx, event.SenderID, target.MessageID)
	if err != nil {
		return false, fmt.Errorf("relay: checking reply target: %w", err)
	}
	if delivered {
		return true, nil
	}
	return strings.Contains(target.Text, r.staffMarker), nil
}

func (r *Router) joinPrompt(ctx context.Context, event Event) {
	checkRow := []Button{{Label: labelCheckMembership, Action: ActionCheckMembership}}
	var buttons [][]Button
	if link, ok := r.gate.InviteLink(ctx); ok {
		buttons = append(buttons, []Button{{Label: labelJoinGroup, URL: link}})
	}
	buttons = append(buttons, checkRow)

	text := joinPromptText(event.SenderName)
	if event.Kind == KindCheck {
		text = textNotMemberYet
	}
	r.respond(ctx, event, Outgoing{Text: text, Buttons: buttons})
}

func (r *Router) register(ctx context.Context, event Event) error {
	binding, created, err := r.registrar.Register(ctx, event.SenderID, event.SenderName)
	if errors.Is(err, identity.ErrRegistrationExhausted) {
		r.logger.Error("registration exhausted", r.redactor.User(event.SenderID), "error", err)
		r.respond(ctx, event, Outgoing{Text: textExhausted})
		return nil
	}
	if err != nil {
		return fmt.Errorf("relay: registering sender: %w", err)
	}
	if !created {
		// Another event from this user registered first.
		r.showSerial(ctx, event, binding)
		return nil
	}

	r.logger.Info("registered user", r.redactor.User(event.SenderID), "serial", binding.Serial)
	name := event.SenderName
	if event.Kind == KindCheck {
		name = ""
	}
	r.respond(ctx, event, Outgoing{
		Text:     registeredText(name, binding.Serial),
		Markdown: true,
		Buttons:  formButtons(),
	})
	return nil
}

func (r *Router) showSerial(ctx context.Context, event Event, binding identity.Binding) {
	text := welcomeBackText(event.SenderName, binding.Serial)
	if event.Kind == KindCheck {
		text = registeredText("", binding.Serial)
	}
	r.respond(ctx, event, Outgoing{Text: text, Markdown: true, Buttons: formButtons()})
}

func formButtons() [][]Button {
	return [][]Button{{{Label: labelGetForm, Action: ActionGetForm}}}
}

func (r *Router) relayToStaff(ctx context.Context, event Event, binding identity.Binding) error {
	_, err := r.conversations.Append(ctx, conversation.Entry{
		UserID:    event.SenderID,
		Text:      event.Text,
		Direction: conversation.UserToStaff,
	})
	if err != nil {
		return fmt.Errorf("relay: recording user message: %w", err)
	}

	relayed := userRelayMessages(binding.Serial, binding.DisplayName, event.Text)
	failures := 0
	for _, staffID := range r.roster.IDs() {
		for _, text := range relayed {
			if _, err := r.sender.Send(ctx, Outgoing{ChatID: staffID, Text: text}); err != nil {
				failures++
				r.logger.Error("forwarding to staff failed",
					r.redactor.Staff(staffID),
					"serial", binding.Serial,
					"error", err,
				)
				break
			}
		}
	}
	r.logger.Info("relayed user message",
		"serial", binding.Serial,
		"staff", r.roster.Len(),
		"failures", failures,
	)

	r.respond(ctx, event, Outgoing{Text: textUserConfirmation})
	return nil
}

// resolveSerial normalizes a serial typed by staff and looks it up.
// found is false (and err nil) when no binding owns it.
func (r *Router) resolveSerial(ctx context.Context, typed string) (binding identity.Binding, found bool, err error) {
	serial, ok := r.generator.Normalize(typed)
	if !ok {
		return identity.Binding{}, false, nil
	}
	binding, err = r.identities.LookupBySerial(ctx, serial)
	if errors.Is(err, identity.ErrNotFound) {
		return identity.Binding{}, false, nil
	}
	if err != nil {
		return identity.Binding{}, false, fmt.Errorf("relay: resolving serial: %w", err)
	}
	return binding, true, nil
}

func (r *Router) staffReply(ctx context.Context, event Event) error {
	typedSerial, text := splitFirst(event.ArgText)
	binding, found, err := r.resolveSerial(ctx, typedSerial)
	if err != nil {
		return err
	}
	if !found {
		r.respond(ctx, event, Outgoing{Text: textSerialNotFound})
		return nil
	}

	// The last chunk's id is recorded; earlier chunks qualify replies
	// through the marker.
	var messageID int64
	for _, chunk := range staffMessages(r.staffMarker, text) {
		messageID, err = r.sender.Send(ctx, Outgoing{ChatID: binding.UserID, Text: chunk})
		if err != nil {
			break
		}
	}
	if err != nil {
		r.logger.Error("delivering staff reply failed",
			r.redactor.Staff(event.SenderID),
			"serial", binding.Serial,
			"error", err,
		)
		r.respond(ctx, event, Outgoing{Text: deliveryFailedText(binding.Serial, err)})
		return nil
	}

	_, err = r.conversations.Append(ctx, conversation.Entry{
		UserID:             binding.UserID,
		StaffID:            event.SenderID,
		Text:               text,
		Direction:          conversation.StaffToUser,
		DeliveredMessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("relay: recording staff reply: %w", err)
	}

	r.logger.Info("relayed staff reply", r.redactor.Staff(event.SenderID), "serial", binding.Serial)
	r.respond(ctx, event, Outgoing{Text: replySentText(binding.Serial)})
	return nil
}

func (r *Router) history(ctx context.Context, event Event) error {
	args := event.Args()
	limit := r.historyLimit
	if len(args) == 2 {
		requested, err := strconv.Atoi(args[1])
		if err != nil || requested < 1 {
			r.respond(ctx, event, Outgoing{Text: textHistoryUsage})
			return nil
		}
		limit = min(requested, MaxHistoryLimit)
	}

	binding, found, err := r.resolveSerial(ctx, args[0])
	if err != nil {
		return err
	}
	if !found {
		r.respond(ctx, event, Outgoing{Text: textSerialNotFound})
		return nil
	}

	records, err := r.conversations.Recent(ctx, binding.UserID, limit)
	if err != nil {
		return fmt.Errorf("relay: reading history: %w", err)
	}
	if len(records) == 0 {
		r.respond(ctx, event, Outgoing{Text: noHistoryText(binding.Serial)})
		return nil
	}

	lines := conversation.FormatHistory(records)
	for _, chunk := range chunkLines(historyHeader(binding.Serial, len(lines)), lines, messageLimit) {
		r.respond(ctx, event, Outgoing{Text: chunk})
	}
	return nil
}

// respond sends message to the event's chat. Button responses edit the
// message the button was attached to.
func (r *Router) respond(ctx context.Context, event Event, message Outgoing) {
	message.ChatID = event.ChatID
	if event.Kind == KindCheck || event.Kind == KindGetForm {
		message.EditMessageID = event.MessageID
	}
	r.send(ctx, event.SenderID, message)
}

func (r *Router) send(ctx context.Context, userID int64, message Outgoing) {
	if _, err := r.sender.Send(ctx, message); err != nil {
		r.logger.Error("sending response failed", r.redactor.User(userID), "error", err)
	}
}

// splitFirst returns the first whitespace-separated word of text and
// the remainder with its inner formatting intact.
func splitFirst(text string) (first, rest string) {
	text = strings.TrimSpace(text)
	split := strings.IndexFunc(text, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t'
	})
	if split < 0 {
		return text, ""
	}
	return text[:split], strings.TrimSpace(text[split:])
}
