package game

import (
	"testing"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDispatchDueOrdersSkipsUnknownOrderType(t *testing.T) {
	s := newTestService(t)
	scheduled := s.now().Add(-time.Minute)
	id, err := s.store.EnqueueOrder(model.Order{
		OrderType: "nonsense_order", SubjectID: "x", ScheduledAt: &scheduled,
		Status: model.OrderPending, CreatedAt: s.now(), UpdatedAt: s.now(),
	})
	require.NoError(t, err)

	rels := s.dispatchDueOrders(s.now())
	require.Empty(t, rels)

	order, err := s.store.OrderByID(id)
	require.NoError(t, err)
	require.Equal(t, model.OrderPending, order.Status, "unrecognised order types stay pending for operator triage")
}

func TestDispatchDueOrdersMarksOrderCompleted(t *testing.T) {
	s := newTestService(t)
	sc := newTestScholar("s.mentor.1")
	require.NoError(t, s.store.UpsertScholar(sc))
	mid, err := s.store.QueueMentorship(model.Mentorship{Player: "p1", Scholar: sc.ID, Start: s.now(), Status: model.MentorshipPending, Track: model.TrackAcademia})
	require.NoError(t, err)

	scheduled := s.now().Add(-time.Minute)
	orderID, err := s.store.EnqueueOrder(model.Order{
		OrderType: "mentorship_activation", SubjectID: sc.ID,
		Payload:     map[string]any{"mentorship_id": mid},
		ScheduledAt: &scheduled, Status: model.OrderPending, CreatedAt: s.now(), UpdatedAt: s.now(),
	})
	require.NoError(t, err)

	rels := s.dispatchDueOrders(s.now())
	require.Len(t, rels, 1)

	order, err := s.store.OrderByID(orderID)
	require.NoError(t, err)
	require.Equal(t, model.OrderCompleted, order.Status)

	m, err := s.store.MentorshipByScholar(sc.ID)
	require.NoError(t, err)
	require.Equal(t, model.MentorshipActive, m.Status)
}

func TestHandleSidecastPhaseChainsNextPhase(t *testing.T) {
	s := newTestService(t)
	sc := newTestScholar("s.sidecast")
	require.NoError(t, s.store.UpsertScholar(sc))

	rels := s.handleSidecastPhase(model.Order{OrderType: "sidecast_debut", SubjectID: sc.ID})
	require.Len(t, rels, 1)

	due, err := s.store.FetchDueOrders(s.now().Add(sidecastPhaseDelay + time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "sidecast_integration", due[0].OrderType)
}

func TestHandleSidecastPhaseSpotlightChainsNothingFurther(t *testing.T) {
	s := newTestService(t)
	sc := newTestScholar("s.sidecast.2")
	require.NoError(t, s.store.UpsertScholar(sc))

	s.handleSidecastPhase(model.Order{OrderType: "sidecast_spotlight", SubjectID: sc.ID})

	due, err := s.store.FetchDueOrders(s.now().Add(sidecastPhaseDelay + time.Minute))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestAdminCancelOrderRejectsAlreadyResolvedOrder(t *testing.T) {
	s := newTestService(t)
	id, err := s.store.EnqueueOrder(model.Order{OrderType: "sideways_vignette", Status: model.OrderCompleted, CreatedAt: s.now(), UpdatedAt: s.now()})
	require.NoError(t, err)

	err = s.AdminCancelOrder(id, "operator cleanup")
	require.Error(t, err)
}

func TestAdminCancelOrderCancelsPendingOrder(t *testing.T) {
	s := newTestService(t)
	id, err := s.store.EnqueueOrder(model.Order{OrderType: "sideways_vignette", Status: model.OrderPending, CreatedAt: s.now(), UpdatedAt: s.now()})
	require.NoError(t, err)

	require.NoError(t, s.AdminCancelOrder(id, "operator cleanup"))

	order, err := s.store.OrderByID(id)
	require.NoError(t, err)
	require.Equal(t, model.OrderCancelled, order.Status)
}
