// Package dashboard renders the user directory shown after login. The
// directory itself is fixed demo data; only paging happens client-side.
package dashboard

// Status of a directory entry.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User is a row in the directory table.
type User struct {
	ID          int
	Name        string
	Avatar      string
	DateCreated string
	Role        string
	Status      Status
}

// MockUsers returns the fixed directory entries.
func MockUsers() []User {
	return []User{
		{ID: 1, Name: "Michael Holz", Avatar: "https://randomuser.me/api/portraits/men/1.jpg", DateCreated: "04/10/2013", Role: "Admin", Status: StatusActive},
		{ID: 2, Name: "Paula Wilson", Avatar: "https://randomuser.me/api/portraits/women/2.jpg", DateCreated: "05/08/2014", Role: "Publisher", Status: StatusActive},
		{ID: 3, Name: "Antonio Moreno", Avatar: "https://randomuser.me/api/portraits/men/3.jpg", DateCreated: "11/05/2015", Role: "Publisher", Status: StatusSuspended},
		{ID: 4, Name: "Mary Saveley", Avatar: "https://randomuser.me/api/portraits/women/4.jpg", DateCreated: "06/09/2016", Role: "Reviewer", Status: StatusActive},
		{ID: 5, Name: "Martin Sommer", Avatar: "https://randomuser.me/api/portraits/men/5.jpg", DateCreated: "12/08/2017", Role: "Moderator", Status: StatusInactive},
	}
}

// Pager slices a user list into fixed-size pages, clamping navigation to
// the valid range.
type Pager struct {
	users   []User
	perPage int
	page    int // 1-based
}

func NewPager(users []User, perPage int) *Pager {
	if perPage < 1 {
		perPage = 1
	}
	return &Pager{users: users, perPage: perPage, page: 1}
}

// TotalPages is at least 1, even for an empty list.
func (p *Pager) TotalPages() int {
	n := (len(p.users) + p.perPage - 1) / p.perPage
	if n < 1 {
		n = 1
	}
	return n
}

// CurrentPage returns the 1-based current page number.
func (p *Pager) CurrentPage() int {
	return p.page
}

// Page returns the rows of the current page.
func (p *Pager) Page() []User {
	first := (p.page - 1) * p.perPage
	if first >= len(p.users) {
		return nil
	}
	last := first + p.perPage
	if last > len(p.users) {
		last = len(p.users)
	}
	return p.users[first:last]
}

// GoTo moves to page n, clamped to [1, TotalPages].
func (p *Pager) GoTo(n int) {
	if n < 1 {
		n = 1
	}
	if max := p.TotalPages(); n > max {
		n = max
	}
	p.page = n
}

// Next advances one page, clamped.
func (p *Pager) Next() { p.GoTo(p.page + 1) }

// Prev goes back one page, clamped.
func (p *Pager) Prev() { p.GoTo(p.page - 1) }

// Showing reports the 1-based range of the current page, for the
// "Showing X to Y of Z results" footer.
func (p *Pager) Showing() (first, last, total int) {
	total = len(p.users)
	if total == 0 {
		return 0, 0, 0
	}
	first = (p.page-1)*p.perPage + 1
	last = p.page * p.perPage
	if last > total {
		last = total
	}
	return first, last, total
}
