package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/storefront/pkg/models"
	"go.uber.org/zap"
)

const handleTimeout = 5 * time.Second

// AuditActor handles OrderEvent messages one at a time.
type AuditActor struct {
	audit  AuditWriter
	broker Broker
	logger *zap.Logger
}

func (a *AuditActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *OrderEvent:
		ack := a.handle(msg)
		if ctx.Sender() != nil {
			ctx.Respond(ack)
		}

	case *actor.Started:
		a.logger.Info("Audit actor started")

	case *actor.Stopping:
		a.logger.Info("Audit actor stopping")

	case *actor.Stopped:
		a.logger.Info("Audit actor stopped")
	}
}

func (a *AuditActor) handle(evt *OrderEvent) *Ack {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	log := a.logger.With(
		zap.String("action", evt.Action),
		zap.String("order_id", evt.OrderID),
	)
	ack := &Ack{}

	if a.audit != nil {
		data := map[string]interface{}{"user_id": evt.UserID}
		for k, v := range evt.Data {
			data[k] = v
		}
		err := a.audit.CreateAuditLog(ctx, &models.AuditLog{
			Service:  ServiceName,
			Action:   evt.RoutingKey(),
			EntityID: evt.OrderID,
			Data:     data,
		})
		if err != nil {
			log.Error("Failed to write audit log", zap.Error(err))
		} else {
			ack.Audited = true
		}
	}

	if a.broker != nil {
		body, err := json.Marshal(evt)
		if err == nil {
			err = a.broker.Publish(ctx, evt.RoutingKey(), body)
		}
		if err != nil {
			log.Error("Failed to publish order event", zap.Error(err))
		} else {
			ack.Published = true
		}
	}

	log.Debug("Order event handled",
		zap.Bool("audited", ack.Audited),
		zap.Bool("published", ack.Published),
	)
	return ack
}

// Dispatcher owns the actor system that processes order events.
type Dispatcher struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

// NewDispatcher spawns the audit actor. audit and broker may be nil.
func NewDispatcher(audit AuditWriter, broker Broker, logger *zap.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &AuditActor{audit: audit, broker: broker, logger: logger.Named("audit-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "audit-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn audit actor: %w", err)
	}

	return &Dispatcher{system: system, pid: pid, logger: logger}, nil
}

// Emit queues evt without waiting for it to be handled.
func (d *Dispatcher) Emit(evt *OrderEvent) {
	d.system.Root.Send(d.pid, evt)
}

// Request sends evt and waits for the actor's Ack.
func (d *Dispatcher) Request(evt *OrderEvent, timeout time.Duration) (*Ack, error) {
	res, err := d.system.Root.RequestFuture(d.pid, evt, timeout).Result()
	if err != nil {
		return nil, err
	}
	ack, ok := res.(*Ack)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %T", res)
	}
	return ack, nil
}

// Stop drains queued events and stops the actor.
func (d *Dispatcher) Stop() {
	if err := d.system.Root.PoisonFuture(d.pid).Wait(); err != nil {
		d.logger.Warn("Audit actor did not stop cleanly", zap.Error(err))
	}
	d.system.Shutdown()
}
