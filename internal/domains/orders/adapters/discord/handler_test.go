package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/memory"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/workflows"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/application"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	"github.com/Apurer/discord-order-bot/internal/platform/clock"
)

const ownerID = "owner"

type countingSnapshots struct {
	mu    sync.Mutex
	saves int
}

func (c *countingSnapshots) Load(context.Context) ([]*domain.Order, error) { return nil, nil }

func (c *countingSnapshots) Save(context.Context, []*domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	return nil
}

type fixture struct {
	session   *fakeSession
	repo      *memory.Repository
	snapshots *countingSnapshots
	handler   *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	session := &fakeSession{}
	repo := memory.NewRepository()
	snapshots := &countingSnapshots{}
	fixed := clock.NewFixed(time.Date(2024, 4, 5, 12, 0, 0, 0, time.UTC))
	relay := workflows.NewInlineFeedbackRelay(NewOwnerNotifier(session, ownerID, fixed))
	svc := application.NewService(ownerID, repo, snapshots, NewAnnouncer(session), relay, application.WithClock(fixed))
	return &fixture{session: session, repo: repo, snapshots: snapshots, handler: NewHandler(svc)}
}

func (f *fixture) handle(i *discordgo.Interaction) {
	f.handler.Handle(context.Background(), f.session, i)
}

func (f *fixture) onlyOrder(t *testing.T) *domain.Order {
	t.Helper()
	orders, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	return orders[0]
}

func requireEphemeral(t *testing.T, resp *discordgo.InteractionResponse, content string) {
	t.Helper()
	require.NotNil(t, resp)
	require.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	require.Equal(t, content, resp.Data.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestHandle_CreateOrderAnnouncesAndStores(t *testing.T) {
	f := newFixture(t)

	f.handle(commandInteraction(ownerID, "C", "Widget", 5))

	order := f.onlyOrder(t)
	assert.Equal(t, "Widget", order.Name)
	assert.Equal(t, int64(5), order.Amount)
	assert.False(t, order.Claimed)
	assert.Equal(t, domain.MessageRef{ChannelID: "C", MessageID: "msg-1"}, order.Message)
	assert.Equal(t, 1, f.snapshots.saves)

	require.Len(t, f.session.sent, 1)
	sent := f.session.sent[0]
	assert.Equal(t, "C", sent.ChannelID)
	assert.Equal(t, "🔓 Unclaimed", sent.Data.Embeds[0].Fields[2].Value)
	button := sent.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.False(t, button.Disabled)
	assert.Equal(t, ClaimCustomID(order.ID), button.CustomID)

	requireEphemeral(t, f.session.lastResponse(), "✅ Order created in <#C>!")
}

func TestHandle_CreateOrderDeniedForOthers(t *testing.T) {
	f := newFixture(t)

	f.handle(commandInteraction("intruder", "C", "Widget", 5))

	orders, err := f.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.session.sent)
	assert.Zero(t, f.snapshots.saves)
	requireEphemeral(t, f.session.lastResponse(), msgForbidden)
}

func TestHandle_CreateOrderRejectsBlankName(t *testing.T) {
	f := newFixture(t)

	f.handle(commandInteraction(ownerID, "C", "   ", 5))

	assert.Empty(t, f.session.sent)
	requireEphemeral(t, f.session.lastResponse(), "❌ Order name is required.")
}

func TestHandle_ClaimFlow(t *testing.T) {
	f := newFixture(t)
	f.handle(commandInteraction(ownerID, "C", "Widget", 5))
	order := f.onlyOrder(t)

	f.handle(buttonInteraction("U", ClaimCustomID(order.ID)))

	claimed := f.onlyOrder(t)
	assert.True(t, claimed.Claimed)
	assert.Equal(t, "U", claimed.ClaimedBy)
	assert.Equal(t, 2, f.snapshots.saves)

	require.Len(t, f.session.edits, 1)
	edit := f.session.edits[0]
	assert.Equal(t, "C", edit.Channel)
	assert.Equal(t, "msg-1", edit.ID)
	assert.Equal(t, "✅ Claimed by <@U>", (*edit.Embeds)[0].Fields[2].Value)
	button := (*edit.Components)[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.True(t, button.Disabled)

	modal := f.session.lastResponse()
	require.Equal(t, discordgo.InteractionResponseModal, modal.Type)
	assert.Equal(t, FeedbackCustomID(order.ID), modal.Data.CustomID)

	f.handle(buttonInteraction("V", ClaimCustomID(order.ID)))
	requireEphemeral(t, f.session.lastResponse(), "❌ This order was already claimed by <@U>!")
	assert.Equal(t, "U", f.onlyOrder(t).ClaimedBy)
	assert.Equal(t, 2, f.snapshots.saves)
	assert.Len(t, f.session.edits, 1)
}

// requireDeferredFollowup checks the modal was acknowledged and then answered privately.
func requireDeferredFollowup(t *testing.T, session *fakeSession, content string) {
	t.Helper()
	resp := session.lastResponse()
	require.NotNil(t, resp)
	require.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, resp.Type)
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	followup := session.lastFollowup()
	require.NotNil(t, followup)
	require.Equal(t, content, followup.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, followup.Flags)
}

func TestHandle_ClaimUnknownOrder(t *testing.T) {
	f := newFixture(t)

	f.handle(buttonInteraction("U", ClaimCustomID("order_404")))

	requireEphemeral(t, f.session.lastResponse(), msgNotFound)
	assert.Zero(t, f.snapshots.saves)
	assert.Empty(t, f.session.edits)
}

func TestHandle_FeedbackReachesOwnerWithoutMutation(t *testing.T) {
	f := newFixture(t)
	f.handle(commandInteraction(ownerID, "C", "Widget", 5))
	order := f.onlyOrder(t)
	f.handle(buttonInteraction("U", ClaimCustomID(order.ID)))
	savesBefore := f.snapshots.saves

	f.handle(modalInteraction("U", FeedbackCustomID(order.ID), "Great!"))

	require.Equal(t, []string{ownerID}, f.session.dmOpened)
	dm := f.session.sent[len(f.session.sent)-1]
	assert.Equal(t, "dm-"+ownerID, dm.ChannelID)
	fields := dm.Data.Embeds[0].Fields
	assert.Equal(t, string(order.ID), fields[0].Value)
	assert.Equal(t, "<@U>", fields[2].Value)
	assert.Equal(t, "Great!", fields[3].Value)

	requireDeferredFollowup(t, f.session, msgFeedbackSent)
	assert.Equal(t, savesBefore, f.snapshots.saves)
	after := f.onlyOrder(t)
	assert.True(t, after.Claimed)
	assert.Equal(t, "U", after.ClaimedBy)
}

func TestHandle_FeedbackForUnknownOrderIsStillRelayed(t *testing.T) {
	f := newFixture(t)

	f.handle(modalInteraction("U", FeedbackCustomID("order_gone"), "Still here"))

	require.Len(t, f.session.sent, 1)
	fields := f.session.sent[0].Data.Embeds[0].Fields
	assert.Equal(t, "order_gone", fields[0].Value)
	assert.Equal(t, "unknown order", fields[1].Value)
	requireDeferredFollowup(t, f.session, msgFeedbackSent)
	assert.Zero(t, f.snapshots.saves)
}

func TestHandle_UnexpectedFailureGetsGenericReply(t *testing.T) {
	f := newFixture(t)
	f.session.failSend = errors.New("discord down")

	f.handle(commandInteraction(ownerID, "C", "Widget", 5))

	requireEphemeral(t, f.session.lastResponse(), msgFailure)
	orders, err := f.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestHandle_PanicGetsGenericReply(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(panickingService{})

	h.Handle(context.Background(), f.session, buttonInteraction("U", ClaimCustomID("order_1")))

	require.Len(t, f.session.responses, 1)
	requireEphemeral(t, f.session.responses[0], msgFailure)
}

func TestHandle_IgnoresForeignComponents(t *testing.T) {
	f := newFixture(t)

	f.handle(buttonInteraction("U", "someone_elses_button"))

	assert.Empty(t, f.session.responses)
}

func TestHandle_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	f.handle(commandInteraction(ownerID, "C", "Widget", 5))
	order := f.onlyOrder(t)

	var wg sync.WaitGroup
	for _, actor := range []string{"U", "V", "W", "X"} {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			f.handle(buttonInteraction(actor, ClaimCustomID(order.ID)))
		}(actor)
	}
	wg.Wait()

	modals := 0
	for _, resp := range f.session.responses {
		if resp.Type == discordgo.InteractionResponseModal {
			modals++
		}
	}
	assert.Equal(t, 1, modals)
	assert.Len(t, f.session.edits, 1)
	assert.True(t, f.onlyOrder(t).Claimed)
}

func TestHandle_StuckClaimGetsGenericReplyBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(blockingService{}, WithResponseTimeout(20*time.Millisecond))

	start := time.Now()
	h.Handle(context.Background(), f.session, buttonInteraction("U", ClaimCustomID("order_1")))

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, f.session.responses, 1)
	requireEphemeral(t, f.session.responses[0], msgFailure)
}

func TestHandle_StuckRelayGetsGenericFollowup(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(blockingService{}, WithRelayTimeout(20*time.Millisecond))

	start := time.Now()
	h.Handle(context.Background(), f.session, modalInteraction("U", FeedbackCustomID("order_1"), "Great!"))

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, f.session.responses, 1)
	require.Len(t, f.session.followups, 1)
	requireDeferredFollowup(t, f.session, msgFailure)
}

func TestHandle_InvalidFeedbackIsAnsweredByFollowup(t *testing.T) {
	f := newFixture(t)

	f.handle(modalInteraction("U", FeedbackCustomID("order_1"), "   "))

	require.Len(t, f.session.followups, 1)
	assert.Contains(t, f.session.lastFollowup().Content, "❌")
	assert.NotEqual(t, msgFailure, f.session.lastFollowup().Content)
	assert.Empty(t, f.session.dmOpened)
}

// blockingService never finishes a use case before its context does.
type blockingService struct{ panickingService }

func (blockingService) ClaimOrder(ctx context.Context, _ domain.ID, _ string) (*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingService) SubmitFeedback(ctx context.Context, _ ports.SubmitFeedbackInput) error {
	<-ctx.Done()
	return ctx.Err()
}

// panickingService blows up on every call.
type panickingService struct{}

func (panickingService) CreateOrder(context.Context, ports.CreateOrderInput) (*domain.Order, error) {
	panic("boom")
}

func (panickingService) ClaimOrder(context.Context, domain.ID, string) (*domain.Order, error) {
	panic("boom")
}

func (panickingService) SubmitFeedback(context.Context, ports.SubmitFeedbackInput) error {
	panic("boom")
}

func (panickingService) GetOrder(context.Context, domain.ID) (*domain.Order, error) {
	panic("boom")
}

func (panickingService) ListOrders(context.Context) ([]*domain.Order, error) { panic("boom") }

func (panickingService) Restore(context.Context) int { panic("boom") }
