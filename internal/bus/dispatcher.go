package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/llm-inbox-prioritizer/internal/automation"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/preferences"
	"github.com/mikey/llm-inbox-prioritizer/internal/session"
	"go.uber.org/zap"
)

// Handler answers requests
type Handler interface {
	Dispatch(ctx context.Context, req Request) (Response, error)
}

// Dispatcher routes every request type to the component that owns it
type Dispatcher struct {
	session    *session.Session
	service    *core.ClassificationService
	prefs      *preferences.Manager
	automation *automation.Processor
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher bound to one session
func NewDispatcher(
	sess *session.Session,
	service *core.ClassificationService,
	prefs *preferences.Manager,
	processor *automation.Processor,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		session:    sess,
		service:    service,
		prefs:      prefs,
		automation: processor,
		logger:     logger,
	}
}

// Dispatch handles req. Expected refusals are reported as an unsuccessful Ack;
// the error return is kept for failures of the underlying components.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, error) {
	d.logger.Debug("Dispatching request", zap.String("action", req.Action()))

	switch r := req.(type) {
	case AnalyzeMessages:
		return d.analyze(ctx, r)
	case AddImportantContact:
		added, err := d.prefs.AddImportantContact(ctx, r.Contact)
		return changed(added, "contact already present", err)
	case RemoveImportantContact:
		removed, err := d.prefs.RemoveImportantContact(ctx, r.Contact)
		return changed(removed, "contact not found", err)
	case AddPriorityTag:
		added, err := d.prefs.AddPriorityTag(ctx, r.Tag)
		return changed(added, "tag already present", err)
	case RemovePriorityTag:
		removed, err := d.prefs.RemovePriorityTag(ctx, r.Tag)
		return changed(removed, "tag not found", err)
	case SetAutomation:
		err := d.prefs.SetAutomation(ctx, core.AutomationSettings{Enabled: r.Enabled, Template: r.Template})
		return changed(true, "", err)
	case ToggleSort:
		return stateResponse(d.session.ToggleSort(ctx))
	case ToggleSpamDetection:
		return stateResponse(d.session.ToggleSpam(ctx))
	case GetState:
		return stateResponse(d.session.State(), nil)
	case RefreshMessages:
		return stateResponse(d.session.Refresh(ctx))
	case SendAutomatedResponse:
		if err := d.automation.Send(ctx, r.MessageLink, r.ResponseText); err != nil {
			d.logger.Warn("Automated response failed",
				zap.String("link", r.MessageLink),
				zap.Error(err))
			return Ack{Success: false, Reason: err.Error()}, nil
		}
		return Ack{Success: true}, nil
	case ProcessUnresponded:
		summary, err := d.automation.ProcessUnresponded(ctx)
		if err != nil {
			return nil, err
		}
		return Summary{Processed: summary.Processed, Succeeded: summary.Succeeded}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
}

func (d *Dispatcher) analyze(ctx context.Context, r AnalyzeMessages) (Response, error) {
	messages := r.Messages
	if len(messages) == 0 {
		messages = d.session.List().Items()
	}

	_, err := d.service.AnalyzeMessages(ctx, messages, r.Method, d.prefs.Snapshot())
	if errors.Is(err, core.ErrAnalysisInProgress) {
		return Ack{Success: false, Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := d.session.Highlight(ctx); err != nil {
		return nil, err
	}
	if err := d.session.ApplyIncrementalSort(ctx); err != nil {
		return nil, err
	}
	return Ack{Success: true}, nil
}

func changed(ok bool, reason string, err error) (Response, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return Ack{Success: false, Reason: reason}, nil
	}
	return Ack{Success: true}, nil
}

func stateResponse(st session.State, err error) (Response, error) {
	if err != nil {
		return nil, err
	}
	return State{
		IsSorted:       st.IsSorted,
		IsSpamFiltered: st.IsSpamFiltered,
		MessageCount:   st.MessageCount,
	}, nil
}
