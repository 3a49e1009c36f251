// Package pub announces persisted parameters documents on NATS.
package pub

import (
	"fmt"
	"math/rand"
	"time"

	gproto "github.com/golang/protobuf/proto"
	"github.com/kostiamol/spinparams/cfg"
	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/proto"
	"github.com/nats-io/go-nats"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
)

// AggregateType marks events emitted by the parameters service.
const AggregateType = "params_svc"

type (
	// Cfg is used to initialize an instance of publisher.
	Cfg struct {
		Addr          cfg.Addr
		CfgPatchTopic string
		Log           log.Logger
		RetryTimeout  time.Duration
		RetryAttempts uint32
	}

	conn interface {
		Publish(subj string, data []byte) error
		Close()
	}

	publisher struct {
		addr          cfg.Addr
		cfgPatchTopic string
		log           log.Logger
		retryTimeout  time.Duration
		retryAttempts uint32
		connect       func(url string) (conn, error)
		now           func() time.Time
	}
)

// New creates and initializes a new instance of publisher.
func New(c *Cfg) *publisher { // nolint
	return &publisher{
		addr:          c.Addr,
		cfgPatchTopic: c.CfgPatchTopic,
		log:           c.Log.With("component", "pub"),
		retryTimeout:  c.RetryTimeout,
		retryAttempts: c.RetryAttempts,
		connect: func(url string) (conn, error) {
			return nats.Connect(url)
		},
		now: time.Now,
	}
}

// Publish sends the freshly persisted document of the given record ("settings" or "profile") to
// <topic>.<record>.
func (p *publisher) Publish(device, record, data string) error {
	var (
		err          error
		c            conn
		retryAttempt uint32
		url          = fmt.Sprintf("nats://%s:%d", p.addr.Host, p.addr.Port)
	)

	for {
		c, err = p.connect(url)
		if err != nil && retryAttempt < p.retryAttempts {
			p.log.With("event", log.EventPublishFailed).Errorf("func Publish: nats connectivity status is DISCONNECTED")
			retryAttempt++
			time.Sleep(p.backoff())
			continue
		}
		break
	}
	if err != nil {
		return errors.Wrapf(err, "func Publish: connect to %s", url)
	}
	defer c.Close()

	e := p.newEvent(device, record, data)
	b, err := gproto.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "func Publish: marshal")
	}

	topic := fmt.Sprintf("%s.%s", p.cfgPatchTopic, record)
	if err := c.Publish(topic, b); err != nil {
		return errors.Wrapf(err, "func Publish: topic %s", topic)
	}

	p.log.With("func", "Publish", "event", log.EventParamsPublished).
		Infof("%s to [%s]", proto.EventToStringBuf(e), topic)

	return nil
}

func (p *publisher) newEvent(device, record, data string) *proto.Event {
	return &proto.Event{
		AggregateId:   device,
		AggregateType: AggregateType,
		EventId:       uuid.NewV4().String(),
		EventType:     record + "_persisted",
		EventData:     data,
		Time:          p.now().Unix(),
	}
}

func (p *publisher) backoff() time.Duration {
	if p.retryTimeout <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(p.retryTimeout))) + time.Millisecond
}
