// Package testutil provides test doubles shared by service and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

type memData struct {
	seq        int
	order      map[string]int
	users      map[string]models.User
	workspaces map[string]models.Workspace
	invites    map[string]models.WorkspaceInvite
	tickets    map[string]models.Ticket
	history    []models.TicketHistory
	subtasks   map[string]models.Subtask
	comments   map[string]models.Comment
	billItems  map[string]models.BillItem
}

func newMemData() *memData {
	return &memData{
		order:      map[string]int{},
		users:      map[string]models.User{},
		workspaces: map[string]models.Workspace{},
		invites:    map[string]models.WorkspaceInvite{},
		tickets:    map[string]models.Ticket{},
		subtasks:   map[string]models.Subtask{},
		comments:   map[string]models.Comment{},
		billItems:  map[string]models.BillItem{},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	c.seq = d.seq
	for k, v := range d.order {
		c.order[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.workspaces {
		v.Members = append([]string(nil), v.Members...)
		c.workspaces[k] = v
	}
	for k, v := range d.invites {
		c.invites[k] = v
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	c.history = append([]models.TicketHistory(nil), d.history...)
	for k, v := range d.subtasks {
		c.subtasks[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.billItems {
		c.billItems[k] = v
	}
	return c
}

func (d *memData) track(id string) {
	d.seq++
	d.order[id] = d.seq
}

// MemStore is an in-memory store.Store. Transactions run against a copy of
// the data that replaces the original on success.
type MemStore struct {
	mu sync.Mutex
	d  *memData
}

var _ store.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{d: newMemData()}
}

func (m *MemStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	m.mu.Lock()
	tx := &MemStore{d: m.d.clone()}
	m.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	m.d = tx.d
	m.mu.Unlock()
	return nil
}

func (m *MemStore) lock() func() {
	m.mu.Lock()
	return m.mu.Unlock
}

// sortBySeq orders records by insertion; newest first when desc is set
func sortBySeq[T any](d *memData, items []T, id func(T) string, desc bool) []T {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := d.order[id(items[i])], d.order[id(items[j])]
		if desc {
			return a > b
		}
		return a < b
	})
	return items
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// === Users ===

func (m *MemStore) CreateUser(ctx context.Context, u *models.User) error {
	defer m.lock()()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range m.d.users {
		if existing.Email == u.Email {
			return apperr.Conflict("create user conflicts with an existing record")
		}
	}
	m.d.users[u.ID] = *u
	m.d.track(u.ID)
	return nil
}

func (m *MemStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	defer m.lock()()
	u, ok := m.d.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer m.lock()()
	email = strings.ToLower(email)
	for _, u := range m.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *MemStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	defer m.lock()()
	out := make([]models.User, 0)
	for _, u := range m.d.users {
		if contains(ids, u.ID) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) ListUsers(ctx context.Context) ([]models.User, error) {
	defer m.lock()()
	out := make([]models.User, 0, len(m.d.users))
	for _, u := range m.d.users {
		out = append(out, u)
	}
	return sortBySeq(m.d, out, func(u models.User) string { return u.ID }, false), nil
}

func (m *MemStore) UpdateUserRole(ctx context.Context, id string, role models.UserRole) error {
	defer m.lock()()
	u, ok := m.d.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.Role = role
	m.d.users[id] = u
	return nil
}

// === Workspaces ===

func (m *MemStore) CreateWorkspace(ctx context.Context, w *models.Workspace) error {
	defer m.lock()()
	if _, ok := m.d.users[w.OwnerID]; !ok {
		return apperr.Validation("create workspace references a record that does not exist")
	}
	stored := *w
	stored.Members = nil
	for _, id := range w.Members {
		if !contains(stored.Members, id) {
			stored.Members = append(stored.Members, id)
		}
	}
	m.d.workspaces[w.ID] = stored
	m.d.track(w.ID)
	return nil
}

func (m *MemStore) getWorkspace(id string) (*models.Workspace, error) {
	w, ok := m.d.workspaces[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	w.Members = append([]string{}, w.Members...)
	return &w, nil
}

func (m *MemStore) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	defer m.lock()()
	return m.getWorkspace(id)
}

func (m *MemStore) ListWorkspacesForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	defer m.lock()()
	out := make([]models.Workspace, 0)
	for id := range m.d.workspaces {
		w, _ := m.getWorkspace(id)
		if w.IsMember(userID) {
			out = append(out, *w)
		}
	}
	return sortBySeq(m.d, out, func(w models.Workspace) string { return w.ID }, true), nil
}

func (m *MemStore) ListAllWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	defer m.lock()()
	out := make([]models.Workspace, 0, len(m.d.workspaces))
	for id := range m.d.workspaces {
		w, _ := m.getWorkspace(id)
		out = append(out, *w)
	}
	return sortBySeq(m.d, out, func(w models.Workspace) string { return w.ID }, true), nil
}

func (m *MemStore) UpdateWorkspace(ctx context.Context, w *models.Workspace) error {
	defer m.lock()()
	existing, ok := m.d.workspaces[w.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	existing.Name = w.Name
	existing.Description = w.Description
	existing.Settings = w.Settings
	existing.UpdatedAt = w.UpdatedAt
	m.d.workspaces[w.ID] = existing
	return nil
}

func (m *MemStore) DeleteWorkspace(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.d.workspaces[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.d.workspaces, id)
	for invID, inv := range m.d.invites {
		if inv.WorkspaceID == id {
			delete(m.d.invites, invID)
		}
	}
	for tID, t := range m.d.tickets {
		if t.WorkspaceID == id {
			m.deleteTicket(tID)
		}
	}
	for bID, b := range m.d.billItems {
		if b.WorkspaceID == id {
			delete(m.d.billItems, bID)
		}
	}
	return nil
}

func (m *MemStore) AddMember(ctx context.Context, workspaceID, userID string) error {
	defer m.lock()()
	w, ok := m.d.workspaces[workspaceID]
	if !ok {
		return apperr.Validation("add member references a record that does not exist")
	}
	if !contains(w.Members, userID) {
		w.Members = append(append([]string{}, w.Members...), userID)
		m.d.workspaces[workspaceID] = w
	}
	return nil
}

func (m *MemStore) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	defer m.lock()()
	w, ok := m.d.workspaces[workspaceID]
	if !ok || !contains(w.Members, userID) {
		return apperr.ErrNotFound
	}
	members := make([]string, 0, len(w.Members))
	for _, id := range w.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	w.Members = members
	m.d.workspaces[workspaceID] = w
	return nil
}

// === Invites ===

func (m *MemStore) CreateInvite(ctx context.Context, inv *models.WorkspaceInvite) error {
	defer m.lock()()
	for _, existing := range m.d.invites {
		if existing.Token == inv.Token {
			return apperr.Conflict("create invite conflicts with an existing record")
		}
	}
	m.d.invites[inv.ID] = *inv
	m.d.track(inv.ID)
	return nil
}

func (m *MemStore) GetInvite(ctx context.Context, id string) (*models.WorkspaceInvite, error) {
	defer m.lock()()
	inv, ok := m.d.invites[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &inv, nil
}

func (m *MemStore) GetInviteByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error) {
	defer m.lock()()
	for _, inv := range m.d.invites {
		if inv.Token == token && inv.RequestedBy == nil {
			return &inv, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *MemStore) FindPendingRequest(ctx context.Context, workspaceID, userID string) (*models.WorkspaceInvite, error) {
	defer m.lock()()
	for _, inv := range m.d.invites {
		if inv.WorkspaceID == workspaceID && inv.RequestedBy != nil && *inv.RequestedBy == userID &&
			inv.Status == models.InvitePending {
			return &inv, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *MemStore) ListInvites(ctx context.Context, filter store.InviteFilter) ([]models.WorkspaceInvite, error) {
	defer m.lock()()
	out := make([]models.WorkspaceInvite, 0)
	for _, inv := range m.d.invites {
		if filter.WorkspaceID != "" && inv.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.JoinRequests != nil && *filter.JoinRequests != inv.IsJoinRequest() {
			continue
		}
		out = append(out, inv)
	}
	return sortBySeq(m.d, out, func(i models.WorkspaceInvite) string { return i.ID }, true), nil
}

func (m *MemStore) UpdateInviteStatus(ctx context.Context, id string, status models.InviteStatus, at time.Time) error {
	defer m.lock()()
	inv, ok := m.d.invites[id]
	if !ok {
		return apperr.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = at
	m.d.invites[id] = inv
	return nil
}

func (m *MemStore) DeleteInvite(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.d.invites[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.d.invites, id)
	return nil
}

func (m *MemStore) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	defer m.lock()()
	var n int64
	for id, inv := range m.d.invites {
		if inv.Status == models.InvitePending && inv.Expired(now) {
			inv.Status = models.InviteRejected
			inv.UpdatedAt = now
			m.d.invites[id] = inv
			n++
		}
	}
	return n, nil
}

// === Tickets ===

func (m *MemStore) CreateTicket(ctx context.Context, t *models.Ticket) error {
	defer m.lock()()
	if _, ok := m.d.workspaces[t.WorkspaceID]; !ok {
		return apperr.Validation("create ticket references a record that does not exist")
	}
	hasParent := t.ParentTicketID != nil
	if (t.Type == models.TicketSubtask) != hasParent {
		return apperr.Validation("create ticket violates constraint tickets_parent_matches_type")
	}
	if hasParent {
		if _, ok := m.d.tickets[*t.ParentTicketID]; !ok {
			return apperr.Validation("create ticket references a record that does not exist")
		}
	}
	if _, ok := m.d.tickets[t.ID]; ok {
		return apperr.Conflict("create ticket conflicts with an existing record")
	}
	m.d.tickets[t.ID] = *t
	m.d.track(t.ID)
	return nil
}

func (m *MemStore) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	defer m.lock()()
	t, ok := m.d.tickets[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &t, nil
}

func (m *MemStore) GetTicketsByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.Ticket, error) {
	defer m.lock()()
	out := make([]models.Ticket, 0)
	for _, t := range m.d.tickets {
		if t.WorkspaceID == workspaceID && contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return sortBySeq(m.d, out, func(t models.Ticket) string { return t.ID }, false), nil
}

func matchTicket(t models.Ticket, f store.TicketFilter) bool {
	switch {
	case f.WorkspaceID != "" && t.WorkspaceID != f.WorkspaceID,
		f.Status != "" && t.Status != f.Status,
		f.Type != "" && t.Type != f.Type,
		f.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != f.AssigneeID),
		f.ParentTicketID != "" && (t.ParentTicketID == nil || *t.ParentTicketID != f.ParentTicketID),
		f.PaymentStatus != "" && t.PaymentStatus != f.PaymentStatus,
		f.Backlog && t.GoLiveDate != nil:
		return false
	}
	if f.GoLiveFrom != nil && (t.GoLiveDate == nil || t.GoLiveDate.Before(*f.GoLiveFrom)) {
		return false
	}
	if f.GoLiveTo != nil && (t.GoLiveDate == nil || t.GoLiveDate.After(*f.GoLiveTo)) {
		return false
	}
	return true
}

func (m *MemStore) ListTickets(ctx context.Context, filter store.TicketFilter) ([]models.Ticket, error) {
	defer m.lock()()
	out := make([]models.Ticket, 0)
	for _, t := range m.d.tickets {
		if matchTicket(t, filter) {
			out = append(out, t)
		}
	}
	return sortBySeq(m.d, out, func(t models.Ticket) string { return t.ID }, true), nil
}

func (m *MemStore) UpdateTicket(ctx context.Context, t *models.Ticket) error {
	defer m.lock()()
	if _, ok := m.d.tickets[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.d.tickets[t.ID] = *t
	return nil
}

func (m *MemStore) DeleteTicket(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.d.tickets[id]; !ok {
		return apperr.ErrNotFound
	}
	m.deleteTicket(id)
	return nil
}

// deleteTicket mirrors the ON DELETE CASCADE rules of the schema
func (m *MemStore) deleteTicket(id string) {
	delete(m.d.tickets, id)
	for childID, child := range m.d.tickets {
		if child.ParentTicketID != nil && *child.ParentTicketID == id {
			m.deleteTicket(childID)
		}
	}
	for sID, s := range m.d.subtasks {
		if s.TicketID == id {
			delete(m.d.subtasks, sID)
		}
	}
	for cID, c := range m.d.comments {
		if c.TicketID == id {
			delete(m.d.comments, cID)
		}
	}
}

// === History ===

func (m *MemStore) AppendHistory(ctx context.Context, entries ...models.TicketHistory) error {
	defer m.lock()()
	m.d.history = append(m.d.history, entries...)
	return nil
}

func (m *MemStore) ListHistory(ctx context.Context, ticketID string) ([]models.TicketHistory, error) {
	defer m.lock()()
	out := make([]models.TicketHistory, 0)
	for i := len(m.d.history) - 1; i >= 0; i-- {
		if m.d.history[i].TicketID == ticketID {
			out = append(out, m.d.history[i])
		}
	}
	return out, nil
}

// HistoryCount returns the number of history rows for ticketID, including
// rows of deleted tickets.
func (m *MemStore) HistoryCount(ticketID string) int {
	defer m.lock()()
	n := 0
	for _, h := range m.d.history {
		if h.TicketID == ticketID {
			n++
		}
	}
	return n
}

// === Checklist subtasks ===

func (m *MemStore) CreateSubtask(ctx context.Context, s *models.Subtask) error {
	defer m.lock()()
	if _, ok := m.d.tickets[s.TicketID]; !ok {
		return apperr.Validation("create subtask references a record that does not exist")
	}
	m.d.subtasks[s.ID] = *s
	m.d.track(s.ID)
	return nil
}

func (m *MemStore) GetSubtask(ctx context.Context, id string) (*models.Subtask, error) {
	defer m.lock()()
	s, ok := m.d.subtasks[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &s, nil
}

func (m *MemStore) ListSubtasks(ctx context.Context, ticketID string) ([]models.Subtask, error) {
	defer m.lock()()
	out := make([]models.Subtask, 0)
	for _, s := range m.d.subtasks {
		if s.TicketID == ticketID {
			out = append(out, s)
		}
	}
	out = sortBySeq(m.d, out, func(s models.Subtask) string { return s.ID }, false)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *MemStore) NextSubtaskOrder(ctx context.Context, ticketID string) (int, error) {
	defer m.lock()()
	next := 0
	for _, s := range m.d.subtasks {
		if s.TicketID == ticketID && s.Order+1 > next {
			next = s.Order + 1
		}
	}
	return next, nil
}

func (m *MemStore) UpdateSubtask(ctx context.Context, s *models.Subtask) error {
	defer m.lock()()
	if _, ok := m.d.subtasks[s.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.d.subtasks[s.ID] = *s
	return nil
}

func (m *MemStore) DeleteSubtask(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.d.subtasks[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.d.subtasks, id)
	return nil
}

// === Comments ===

func (m *MemStore) CreateComment(ctx context.Context, c *models.Comment) error {
	defer m.lock()()
	if _, ok := m.d.tickets[c.TicketID]; !ok {
		return apperr.Validation("create comment references a record that does not exist")
	}
	m.d.comments[c.ID] = *c
	m.d.track(c.ID)
	return nil
}

func (m *MemStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	defer m.lock()()
	c, ok := m.d.comments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &c, nil
}

func (m *MemStore) ListComments(ctx context.Context, ticketID string) ([]models.Comment, error) {
	defer m.lock()()
	out := make([]models.Comment, 0)
	for _, c := range m.d.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return sortBySeq(m.d, out, func(c models.Comment) string { return c.ID }, false), nil
}

func (m *MemStore) UpdateComment(ctx context.Context, c *models.Comment) error {
	defer m.lock()()
	if _, ok := m.d.comments[c.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.d.comments[c.ID] = *c
	return nil
}

func (m *MemStore) DeleteComment(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.d.comments[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.d.comments, id)
	return nil
}

// === Bill items ===

func (m *MemStore) CreateBillItem(ctx context.Context, b *models.BillItem) error {
	defer m.lock()()
	if b.Hours <= 0 {
		return apperr.Validation("create bill item violates constraint bill_items_hours_check")
	}
	m.d.billItems[b.ID] = *b
	m.d.track(b.ID)
	return nil
}

func (m *MemStore) GetBillItem(ctx context.Context, id string) (*models.BillItem, error) {
	defer m.lock()()
	b, ok := m.d.billItems[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &b, nil
}

func (m *MemStore) GetBillItemsByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.BillItem, error) {
	defer m.lock()()
	out := make([]models.BillItem, 0)
	for _, b := range m.d.billItems {
		if b.WorkspaceID == workspaceID && contains(ids, b.ID) {
			out = append(out, b)
		}
	}
	return sortBySeq(m.d, out, func(b models.BillItem) string { return b.ID }, false), nil
}

func (m *MemStore) ListBillItems(ctx context.Context, filter store.BillItemFilter) ([]models.BillItem, error) {
	defer m.lock()()
	out := make([]models.BillItem, 0)
	for _, b := range m.d.billItems {
		if filter.WorkspaceID != "" && b.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if filter.UserID != "" && (b.UserID == nil || *b.UserID != filter.UserID) {
			continue
		}
		out = append(out, b)
	}
	return sortBySeq(m.d, out, func(b models.BillItem) string { return b.ID }, true), nil
}

func (m *MemStore) UpdateBillItem(ctx context.Context, b *models.BillItem) error {
	defer m.lock()()
	if _, ok := m.d.billItems[b.ID]; !ok {
		return apperr.ErrNotFound
	}
	if b.Hours <= 0 {
		return apperr.Validation("update bill item violates constraint bill_items_hours_check")
	}
	m.d.billItems[b.ID] = *b
	return nil
}

func (m *MemStore) DeleteBillItem(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.d.billItems[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.d.billItems, id)
	return nil
}
