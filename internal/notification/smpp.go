package notification

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fiorix/go-smpp/smpp"
	"github.com/fiorix/go-smpp/smpp/pdu"
	"github.com/fiorix/go-smpp/smpp/pdu/pdufield"
	"github.com/fiorix/go-smpp/smpp/pdu/pdutext"

	"github.com/sergiohdezchi/order-processing-service/internal/config"
)

// SmppBinder binds transceiver sessions to an SMPP server.
type SmppBinder struct {
	addr string
	cfg  config.Smpp
}

func NewSmppBinder(addr string, cfg config.Smpp) *SmppBinder {
	return &SmppBinder{addr: addr, cfg: cfg}
}

func (b *SmppBinder) Bind() (Session, error) {
	tx := &smpp.Transceiver{
		Addr:        b.addr,
		User:        b.cfg.SystemID,
		Passwd:      b.cfg.Password,
		SystemType:  b.cfg.SystemType,
		EnquireLink: b.cfg.EnquireLink,
		RespTimeout: b.cfg.SubmitTimeout,
		WindowSize:  uint(b.cfg.WindowSize),
	}

	conn := tx.Bind()
	timer := time.NewTimer(b.cfg.ConnectTimeout)
	defer timer.Stop()

	for {
		select {
		case status, ok := <-conn:
			if !ok {
				_ = tx.Close()
				return nil, errors.New("smpp bind: status channel closed")
			}
			switch status.Status() {
			case smpp.Connected:
				sess := &smppSession{tx: tx, cfg: b.cfg}
				sess.bound.Store(true)
				go sess.watch(conn)
				return sess, nil
			case smpp.BindFailed, smpp.ConnectionFailed:
				_ = tx.Close()
				return nil, fmt.Errorf("smpp bind: %v", status.Error())
			}
		case <-timer.C:
			_ = tx.Close()
			return nil, errors.New("smpp bind: connect timeout")
		}
	}
}

func (b *SmppBinder) Close() error { return nil }

type smppSession struct {
	tx    *smpp.Transceiver
	bound atomic.Bool
	cfg   config.Smpp
}

// watch tracks connection status events for the lifetime of the session.
func (s *smppSession) watch(conn <-chan smpp.ConnStatus) {
	for status := range conn {
		s.bound.Store(status.Status() == smpp.Connected)
	}
	s.bound.Store(false)
}

func (s *smppSession) Bound() bool { return s.bound.Load() }

// Submit sends one short message. The response timeout is fixed on the
// transceiver at bind time, so the per-call timeout is not re-applied here.
func (s *smppSession) Submit(destination, text string, _ time.Duration) (uint32, error) {
	sm := &smpp.ShortMessage{
		Src:           s.cfg.SourceAddr,
		Dst:           destination,
		SourceAddrTON: s.cfg.SourceAddrTON,
		SourceAddrNPI: s.cfg.SourceAddrNPI,
		DestAddrTON:   s.cfg.DestAddrTON,
		DestAddrNPI:   s.cfg.DestAddrNPI,
		Text:          pdutext.GSM7([]byte(text)),
		Register:      pdufield.NoDeliveryReceipt,
	}

	_, err := s.tx.Submit(sm)
	if err == nil {
		return 0, nil
	}
	// A non-zero command status is an acknowledged rejection, not a
	// transport failure: surface the ack code to the caller.
	var status pdu.Status
	if errors.As(err, &status) {
		return uint32(status), nil
	}
	if errors.Is(err, smpp.ErrTimeout) {
		return 0, fmt.Errorf("%w: %v", ErrSubmitTimeout, err)
	}
	if errors.Is(err, smpp.ErrNotConnected) {
		s.bound.Store(false)
		return 0, fmt.Errorf("%w: %v", ErrChannelClosed, err)
	}
	return 0, err
}

func (s *smppSession) Close() error {
	s.bound.Store(false)
	return s.tx.Close()
}
