package chatclient

import "sort"

// ThreadState - локальная копия истории треда. Поллер сливает в нее
// свежие ответы сервера; сообщения, измененные локально и еще не
// подтвержденные сервером, при слиянии не перезатираются.
type ThreadState struct {
	messages []Message
	index    map[string]int  // id -> позиция в messages
	dirty    map[string]bool // локально измененные, сервер их не перетирает
}

func NewThreadState() *ThreadState {
	return &ThreadState{
		index: make(map[string]int),
		dirty: make(map[string]bool),
	}
}

// Messages возвращает копию текущей истории
func (s *ThreadState) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len возвращает число сообщений в локальной истории
func (s *ThreadState) Len() int {
	return len(s.messages)
}

// MarkLocallyModified помечает сообщение как измененное локально
// (оптимистичный переход статуса до подтверждения сервером)
func (s *ThreadState) MarkLocallyModified(messageID string) {
	s.dirty[messageID] = true
}

// ClearLocalModification снимает локальную пометку - сервер
// подтвердил изменение, его версия снова авторитетна
func (s *ThreadState) ClearLocalModification(messageID string) {
	delete(s.dirty, messageID)
}

// AddLocal добавляет локальное сообщение (например, оптимистично
// отображаемое до ответа сервера) и пересортировывает историю
func (s *ThreadState) AddLocal(m Message) {
	s.upsert(m)
	s.dirty[m.ID] = true
	s.resort()
}

// Merge сливает ответ сервера в локальную историю.
//
// Правила:
//   - пустая локальная история - ответ сервера берется как есть;
//   - незнакомый id - сообщение добавляется;
//   - знакомый id - серверная версия перезаписывает локальную,
//     кроме помеченных MarkLocallyModified;
//   - локальные сообщения, которых сервер (еще) не знает, остаются;
//   - после слияния история пересортировывается по (created_at, id).
//
// Повторный Merge того же ответа - no-op: слияние идемпотентно.
func (s *ThreadState) Merge(server []Message) {
	if len(s.messages) == 0 {
		s.messages = make([]Message, len(server))
		copy(s.messages, server)
		s.reindex()
		s.resort()
		return
	}

	for _, m := range server {
		if pos, ok := s.index[m.ID]; ok {
			if s.dirty[m.ID] {
				continue
			}
			s.messages[pos] = m
		} else {
			s.upsert(m)
		}
	}
	s.resort()
}

func (s *ThreadState) upsert(m Message) {
	if pos, ok := s.index[m.ID]; ok {
		s.messages[pos] = m
		return
	}
	s.messages = append(s.messages, m)
	s.index[m.ID] = len(s.messages) - 1
}

func (s *ThreadState) reindex() {
	s.index = make(map[string]int, len(s.messages))
	for i := range s.messages {
		s.index[s.messages[i].ID] = i
	}
}

// resort восстанавливает порядок (created_at, id). Сортировка
// стабильная, чтобы равные ключи не скакали между поллами.
func (s *ThreadState) resort() {
	sort.SliceStable(s.messages, func(i, j int) bool {
		a, b := &s.messages[i], &s.messages[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	s.reindex()
}
