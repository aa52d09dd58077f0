package questionnaire

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vnkhanh/checkout-survey/logger"
)

// Persister ghi submission tích luỹ về backend (upsert theo shop + order).
type Persister interface {
	Persist(ctx context.Context, s Submission) error
}

type PersisterFunc func(ctx context.Context, s Submission) error

func (f PersisterFunc) Persist(ctx context.Context, s Submission) error { return f(ctx, s) }

// AsyncPersister gửi theo kiểu fire-and-forget: không chặn người gọi, không
// retry; lỗi chỉ được log rồi bỏ qua. Các lần gửi cùng (shop, order) chạy lần
// lượt theo thứ tự gọi, nên payload cuối (kể cả trạng thái kết thúc) luôn là
// bản ghi sau cùng.
type AsyncPersister struct {
	next    Persister
	timeout time.Duration
	wg      sync.WaitGroup

	mu    sync.Mutex
	tails map[string]chan struct{}
}

func NewAsyncPersister(next Persister, timeout time.Duration) *AsyncPersister {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AsyncPersister{next: next, timeout: timeout, tails: make(map[string]chan struct{})}
}

func (a *AsyncPersister) Persist(ctx context.Context, s Submission) error {
	key := s.ShopDomain + "\x00" + s.OrderID
	done := make(chan struct{})

	a.mu.Lock()
	prev := a.tails[key]
	a.tails[key] = done
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.release(key, done)
		if prev != nil {
			<-prev
		}

		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Persist(c, s); err != nil {
			logger.WithFields(logrus.Fields{
				"shop":     s.ShopDomain,
				"order_id": s.OrderID,
			}).WithError(err).Warn("questionnaire: async persist failed, dropped")
		}
	}()
	return nil
}

func (a *AsyncPersister) release(key string, done chan struct{}) {
	a.mu.Lock()
	if a.tails[key] == done {
		delete(a.tails, key)
	}
	a.mu.Unlock()
	close(done)
}

// Wait chờ các lần gửi đang bay (dùng khi shutdown và trong test).
func (a *AsyncPersister) Wait() {
	a.wg.Wait()
}
