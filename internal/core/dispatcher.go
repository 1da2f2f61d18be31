package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jukebot/internal/chat"
	"jukebot/internal/flood"
	"jukebot/internal/i18n"
	"jukebot/pkg/text"
)

// Dispatcher turns inbound chat events into reply actions. It drives the
// per-request state machine: free-text searches resolve to a single candidate
// and issue a confirmation token; postbacks redeem the token through the
// queue manager.
type Dispatcher struct {
	config    *Config
	resolver  TrackResolver
	registry  *ConfirmRegistry
	queue     *QueueManager
	floodgate *flood.Floodgate
	localizer *i18n.Localizer
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. The registry must be the same instance
// the queue manager redeems against.
func NewDispatcher(
	config *Config,
	resolver TrackResolver,
	registry *ConfirmRegistry,
	queue *QueueManager,
	floodgate *flood.Floodgate,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		config:    config,
		resolver:  resolver,
		registry:  registry,
		queue:     queue,
		floodgate: floodgate,
		localizer: i18n.NewLocalizer(config.App.Language),
		logger:    logger,
	}
}

// Handle processes one inbound chat event and returns the reply action, or
// nil when the event warrants no reply. Failures are contained within the
// event: the worst outcome is an apologetic text reply.
func (d *Dispatcher) Handle(ctx context.Context, event *chat.Event) *chat.Reply {
	switch event.Type {
	case chat.EventTypeMessage:
		return d.handleMessage(ctx, event)
	case chat.EventTypePostback:
		return d.handlePostback(ctx, event)
	default:
		d.logger.Debug("Ignoring unknown event type",
			zap.Int("type", int(event.Type)))
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, event *chat.Event) *chat.Reply {
	query := text.Clean(event.Text)
	if query == "" {
		return nil
	}

	if text.IsRejection(query) {
		d.registry.Clear(event.UserID)
		return chat.TextReply(d.localizer.T("reply.rejected"))
	}

	if d.floodgate != nil && !d.floodgate.Allow(event.UserID) {
		d.logger.Debug("Search rate-limited",
			zap.String("identity", event.UserID))
		return chat.TextReply(d.localizer.T("reply.rate_limited"))
	}

	candidates, err := d.resolver.Resolve(ctx, query)
	if err != nil {
		d.logger.Warn("Track resolution failed",
			zap.String("query", query),
			zap.Error(err))
		return chat.TextReply(d.localizer.T("reply.search_failed"))
	}

	if len(candidates) == 0 {
		return chat.TextReply(d.localizer.T("reply.no_results"))
	}

	best := candidates[0]
	if len(candidates) > 1 && best.Score < d.config.App.SimilarityThreshold {
		return d.replyAmbiguous(candidates)
	}

	return d.promptConfirmation(event, best)
}

// replyAmbiguous lists up to MaxAlternatives candidates as plain text instead
// of risking a wrong-track confirmation.
func (d *Dispatcher) replyAmbiguous(candidates []Candidate) *chat.Reply {
	limit := d.config.App.MaxAlternatives
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	var lines []string
	for _, candidate := range candidates[:limit] {
		lines = append(lines, fmt.Sprintf("• %s by %s", candidate.Title, candidate.Artist))
	}

	return chat.TextReply(d.localizer.T("reply.ambiguous", strings.Join(lines, "\n")))
}

func (d *Dispatcher) promptConfirmation(event *chat.Event, candidate Candidate) *chat.Reply {
	playedToday := d.queue.HasBeenPlayedToday(candidate.Title, candidate.Artist)

	token := d.registry.Issue(event.UserID)

	payload, err := encodeConfirmPayload(candidate, token, playedToday)
	if err != nil {
		d.logger.Error("Failed to encode confirmation payload",
			zap.String("title", candidate.Title),
			zap.Error(err))
		d.registry.Clear(event.UserID)
		return chat.TextReply(d.localizer.T("reply.search_failed"))
	}

	body := d.localizer.T("confirm.body", candidate.Artist)
	if playedToday {
		body += d.localizer.T("confirm.played_today")
	}

	d.logger.Debug("Confirmation issued",
		zap.String("identity", event.UserID),
		zap.String("title", candidate.Title),
		zap.String("artist", candidate.Artist),
		zap.Bool("playedToday", playedToday))

	return chat.ConfirmReply(chat.ConfirmCard{
		Title:        candidate.Title,
		Artist:       candidate.Artist,
		ArtworkURL:   candidate.ArtworkURL,
		Body:         body,
		ConfirmData:  payload,
		ConfirmLabel: d.localizer.T("confirm.confirm_label"),
		RejectText:   text.RejectPhrase,
		RejectLabel:  d.localizer.T("confirm.reject_label"),
	})
}

func (d *Dispatcher) handlePostback(ctx context.Context, event *chat.Event) *chat.Reply {
	payload, err := decodeConfirmPayload(event.PostbackData)
	if err != nil {
		d.logger.Warn("Malformed confirmation postback",
			zap.String("identity", event.UserID),
			zap.Error(err))
		return chat.TextReply(d.localizer.T("reply.expired"))
	}

	candidate := Candidate{
		Title:      payload.Title,
		Artist:     payload.Artist,
		ArtworkURL: payload.ArtworkURL,
	}

	requester := event.DisplayName
	if requester == "" {
		requester = event.UserID
	}

	result := d.queue.Confirm(ctx, event.UserID, payload.Token,
		candidate, payload.PlayedToday, requester)

	switch result {
	case ConfirmAdded:
		return chat.TextReply(d.localizer.T("reply.added", payload.Title, payload.Artist))
	case ConfirmDuplicate:
		return chat.TextReply(d.localizer.T("reply.duplicate"))
	default:
		return chat.TextReply(d.localizer.T("reply.expired"))
	}
}
