package chatclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Poller периодически забирает историю треда и сливает ее в
// локальное состояние. Одновременно выполняется не больше одного
// запроса: если предыдущий полл еще не вернулся, тик пропускается.
type Poller struct {
	client   *Client
	threadID string
	interval time.Duration

	mu    sync.Mutex
	state *ThreadState

	inFlight atomic.Bool
	onUpdate func([]Message)
	onError  func(error)
}

type PollerOption func(*Poller)

// OnUpdate регистрирует колбэк, вызываемый после каждого успешного
// слияния. Колбэк получает копию истории.
func OnUpdate(fn func([]Message)) PollerOption {
	return func(p *Poller) { p.onUpdate = fn }
}

// OnError регистрирует колбэк для ошибок полла. Ошибка не
// останавливает поллер - следующий тик пробует снова.
func OnError(fn func(error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

func NewPoller(client *Client, threadID string, interval time.Duration, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	p := &Poller{
		client:   client,
		threadID: threadID,
		interval: interval,
		state:    NewThreadState(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start запускает цикл поллинга. Первый полл уходит сразу, дальше -
// по тикеру. Останавливается отменой контекста.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce выполняет один полл. Если предыдущий еще в полете,
// выходит сразу - накладывающихся запросов не бывает.
func (p *Poller) pollOnce(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	detail, err := p.client.GetThread(ctx, p.threadID)
	if err != nil {
		if p.onError != nil {
			p.onError(err)
		}
		return
	}

	p.mu.Lock()
	p.state.Merge(detail.Messages)
	snapshot := p.state.Messages()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
}

// Snapshot возвращает копию текущей локальной истории
func (p *Poller) Snapshot() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Messages()
}

// MarkLocallyModified помечает сообщение как измененное локально -
// ближайшие поллы не перезатрут его серверной версией
func (p *Poller) MarkLocallyModified(messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.MarkLocallyModified(messageID)
}

// ClearLocalModification возвращает сообщению серверную авторитетность
func (p *Poller) ClearLocalModification(messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.ClearLocalModification(messageID)
}

// AddLocal добавляет оптимистичное локальное сообщение
func (p *Poller) AddLocal(m Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.AddLocal(m)
}
