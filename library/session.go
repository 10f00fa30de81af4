package library

// Role tells readers and librarians apart.
type Role int

const (
	RoleReader Role = iota + 1
	RoleLibrarian
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleLibrarian:
		return "librarian"
	default:
		return "unknown"
	}
}

// Identity is an account that passed the password check.
type Identity struct {
	ID   int64
	Name string
	Role Role
}

// LoginRoleCheck looks the id up among readers, then librarians, and
// compares the plaintext password.
func (c *Catalog) LoginRoleCheck(id int64, password string) (Identity, error) {
	for _, u := range c.users {
		if u.ID != id {
			continue
		}
		if u.Password != password {
			return Identity{}, ErrWrongPassword
		}
		return Identity{ID: u.ID, Name: u.Name, Role: RoleReader}, nil
	}
	for _, l := range c.librarians {
		if l.ID != id {
			continue
		}
		if l.Password != password {
			return Identity{}, ErrWrongPassword
		}
		return Identity{ID: l.ID, Name: l.Name, Role: RoleLibrarian}, nil
	}
	return Identity{}, ErrWrongID
}

// Session carries the authenticated account through a sequence of catalog
// and lending calls. Exactly one of Reader and Librarian is set.
type Session struct {
	Identity
	Catalog   *Catalog
	Reader    *User
	Librarian *Librarian
}

func (c *Catalog) Login(id int64, password string) (*Session, error) {
	ident, err := c.LoginRoleCheck(id, password)
	if err != nil {
		return nil, err
	}
	s := &Session{Identity: ident, Catalog: c}
	switch ident.Role {
	case RoleReader:
		s.Reader, err = c.User(id)
	case RoleLibrarian:
		s.Librarian, err = c.Librarian(id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RequireReader returns the reader account or ErrReaderOnly.
func (s *Session) RequireReader() (*User, error) {
	if s.Role != RoleReader || s.Reader == nil {
		return nil, ErrReaderOnly
	}
	return s.Reader, nil
}

func (s *Session) RequireLibrarian() (*Librarian, error) {
	if s.Role != RoleLibrarian || s.Librarian == nil {
		return nil, ErrLibrarianOnly
	}
	return s.Librarian, nil
}
