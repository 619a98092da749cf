package domain

import "time"

// User represents the marketplace user record issued by the remote API
type User struct {
	ID             string     `json:"_id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	UserName       string     `json:"userName"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	WhatsappNumber string     `json:"whatsappNumber,omitempty"`
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	Role           string     `json:"role,omitempty"`
	UserField      string     `json:"userField,omitempty"`
	ProfileImage   string     `json:"profileImage,omitempty"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// Role and user field values understood by the client
const (
	RoleAdmin       = "admin"
	UserFieldBuyer  = "buyer"
	UserFieldSeller = "seller"
)

// IdentityKind classifies who is using the client
type IdentityKind string

const (
	IdentityGuest   IdentityKind = "guest"
	IdentityAdmin   IdentityKind = "admin"
	IdentityBuyer   IdentityKind = "buyer"
	IdentitySeller  IdentityKind = "seller"
	IdentityInvalid IdentityKind = "invalid"
)

// Identity is the single classification derived from a user record.
// Admin takes precedence over the user field.
type Identity struct {
	Kind IdentityKind `json:"kind"`
}

// IdentityOf classifies a user record
func IdentityOf(u *User) Identity {
	switch {
	case u == nil:
		return Identity{Kind: IdentityGuest}
	case u.Role == RoleAdmin:
		return Identity{Kind: IdentityAdmin}
	case u.UserField == UserFieldBuyer:
		return Identity{Kind: IdentityBuyer}
	case u.UserField == UserFieldSeller:
		return Identity{Kind: IdentitySeller}
	default:
		return Identity{Kind: IdentityInvalid}
	}
}

// IsGuest reports whether nobody is logged in
func (i Identity) IsGuest() bool { return i.Kind == IdentityGuest }

// IsValid reports whether the identity maps to a navigable graph
func (i Identity) IsValid() bool { return i.Kind != IdentityInvalid && i.Kind != "" }

// SessionSnapshot is a point-in-time copy of the session state
type SessionSnapshot struct {
	User     *User    `json:"user"`
	Token    string   `json:"-"`
	Loading  bool     `json:"loading"`
	Identity Identity `json:"identity"`
}

// Authenticated reports whether the snapshot holds a user and token
func (s SessionSnapshot) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Graph names a set of navigable screens
type Graph string

const (
	GraphHydrating Graph = "hydrating"
	GraphGuest     Graph = "guest"
	GraphAdmin     Graph = "admin"
	GraphBuyer     Graph = "buyer"
	GraphSeller    Graph = "seller"
	GraphNone      Graph = "none"
)

// Role returns the policy subject that owns the graph's screens
func (g Graph) Role() string {
	return "role_" + string(g)
}

// Screen identifiers exposed to the rest of the client
const (
	ScreenSplash = "splash"

	ScreenHome     = "home"
	ScreenRegister = "Register"
	ScreenLogin    = "login"

	ScreenAdminDashboard = "admindashboard"
	ScreenAllUsers       = "alluser"
	ScreenAllShops       = "allshop"

	ScreenBuyerDashboard = "buyerdashboard"
	ScreenOrder          = "order"
	ScreenAccount        = "account"
	ScreenProfile        = "profile"
	ScreenAbout          = "about"
	ScreenPolicy         = "policy"
	ScreenProductDetail  = "productdetail"
	ScreenGetAll         = "getall"
	ScreenBuy            = "buy"
	ScreenCart           = "cart"
	ScreenBuyerOrder     = "buyerorder"

	ScreenSellerDashboard = "sellerdashboard"
	ScreenCreateShop      = "createshop"
	ScreenProductManage   = "productmanage"
	ScreenProduct         = "product"
	ScreenSales           = "sales"
)

// Route is a navigable screen graph with its entry point
type Route struct {
	Graph   Graph    `json:"graph"`
	Entry   string   `json:"entry,omitempty"`
	Screens []string `json:"screens"`
}

// Has reports whether the route contains the screen
func (r Route) Has(screen string) bool {
	for _, s := range r.Screens {
		if s == screen {
			return true
		}
	}
	return false
}

// Resolved reports whether the route is an authoritative graph
func (r Route) Resolved() bool {
	return r.Graph != GraphHydrating
}

// Clone returns a copy that does not share the screens slice
func (r Route) Clone() Route {
	c := r
	c.Screens = append([]string(nil), r.Screens...)
	return c
}

// Registration holds the sign-up form submitted to the API
type Registration struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	UserName       string `json:"userName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	WhatsappNumber string `json:"whatsappNumber"`
	Address        string `json:"address"`
	City           string `json:"city"`
	UserField      string `json:"userField"`
	Password       string `json:"password"`
}

// LoginResult is the API outcome of a credentials check
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// TokenInfo describes a bearer token for display
type TokenInfo struct {
	Format    string     `json:"format"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// Notification is a toast shown to the user
type Notification struct {
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
