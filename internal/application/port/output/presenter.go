package output

import (
	"context"

	"github.com/Ajay03299/DevForge/internal/application/dto"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// RepairPresenter renders a session for the user: live progress through the
// observer events, then the final report.
type RepairPresenter interface {
	RepairObserver
	PresentReport(out *dto.RunRepairOutput) error
	PresentError(err error) error
}

// RepairObserver receives progress events from a repair session.
// Observers must not block the loop for long and must not fail it:
// implementations log their own errors.
type RepairObserver interface {
	AttemptStarted(ctx context.Context, ev repair.AttemptStarted)
	AttemptFinished(ctx context.Context, ev repair.AttemptFinished)
	SessionFinished(ctx context.Context, ev repair.SessionFinished)
}

// Observers fans events out to several observers in order
type Observers []RepairObserver

func (o Observers) AttemptStarted(ctx context.Context, ev repair.AttemptStarted) {
	for _, obs := range o {
		obs.AttemptStarted(ctx, ev)
	}
}

func (o Observers) AttemptFinished(ctx context.Context, ev repair.AttemptFinished) {
	for _, obs := range o {
		obs.AttemptFinished(ctx, ev)
	}
}

func (o Observers) SessionFinished(ctx context.Context, ev repair.SessionFinished) {
	for _, obs := range o {
		obs.SessionFinished(ctx, ev)
	}
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) AttemptStarted(context.Context, repair.AttemptStarted)   {}
func (NopObserver) AttemptFinished(context.Context, repair.AttemptFinished) {}
func (NopObserver) SessionFinished(context.Context, repair.SessionFinished) {}
