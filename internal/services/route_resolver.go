package services

import "github.com/you/dairyshell/domain"

// screenGraphs lists every navigable graph with its entry screen first
var screenGraphs = []domain.Route{
	{
		Graph:   domain.GraphGuest,
		Entry:   domain.ScreenHome,
		Screens: []string{domain.ScreenHome, domain.ScreenRegister, domain.ScreenLogin},
	},
	{
		Graph:   domain.GraphAdmin,
		Entry:   domain.ScreenAdminDashboard,
		Screens: []string{domain.ScreenAdminDashboard, domain.ScreenAllUsers, domain.ScreenAllShops},
	},
	{
		Graph: domain.GraphBuyer,
		Entry: domain.ScreenBuyerDashboard,
		Screens: []string{
			domain.ScreenBuyerDashboard,
			domain.ScreenOrder,
			domain.ScreenAccount,
			domain.ScreenProfile,
			domain.ScreenAbout,
			domain.ScreenPolicy,
			domain.ScreenProductDetail,
			domain.ScreenGetAll,
			domain.ScreenBuy,
			domain.ScreenCart,
			domain.ScreenBuyerOrder,
		},
	},
	{
		Graph: domain.GraphSeller,
		Entry: domain.ScreenSellerDashboard,
		Screens: []string{
			domain.ScreenSellerDashboard,
			domain.ScreenCreateShop,
			domain.ScreenProductManage,
			domain.ScreenProduct,
			domain.ScreenSales,
			domain.ScreenProfile,
		},
	},
}

var (
	hydratingRoute = domain.Route{
		Graph:   domain.GraphHydrating,
		Entry:   domain.ScreenSplash,
		Screens: []string{domain.ScreenSplash},
	}
	deadEndRoute = domain.Route{Graph: domain.GraphNone, Screens: []string{}}
)

// RouteResolverImpl implements domain.RouteResolver
type RouteResolverImpl struct {
	graphs map[domain.Graph]domain.Route
}

// NewRouteResolver creates a resolver over the built-in screen graphs
func NewRouteResolver() *RouteResolverImpl {
	graphs := make(map[domain.Graph]domain.Route, len(screenGraphs))
	for _, r := range screenGraphs {
		graphs[r.Graph] = r
	}
	return &RouteResolverImpl{graphs: graphs}
}

// Resolve implements domain.RouteResolver.
// While the snapshot is loading the splash route is returned; it is never
// one of the identity graphs.
func (r *RouteResolverImpl) Resolve(snapshot domain.SessionSnapshot) domain.Route {
	if snapshot.Loading {
		return hydratingRoute.Clone()
	}

	var graph domain.Graph
	switch domain.IdentityOf(snapshot.User).Kind {
	case domain.IdentityGuest:
		graph = domain.GraphGuest
	case domain.IdentityAdmin:
		graph = domain.GraphAdmin
	case domain.IdentityBuyer:
		graph = domain.GraphBuyer
	case domain.IdentitySeller:
		graph = domain.GraphSeller
	default:
		return deadEndRoute.Clone()
	}
	return r.graphs[graph].Clone()
}

// Graph implements domain.RouteResolver
func (r *RouteResolverImpl) Graph(graph domain.Graph) (domain.Route, bool) {
	switch graph {
	case domain.GraphHydrating:
		return hydratingRoute.Clone(), true
	case domain.GraphNone:
		return deadEndRoute.Clone(), true
	}
	route, ok := r.graphs[graph]
	if !ok {
		return domain.Route{}, false
	}
	return route.Clone(), true
}

// Graphs implements domain.RouteResolver; only identity graphs are listed
func (r *RouteResolverImpl) Graphs() []domain.Route {
	out := make([]domain.Route, 0, len(screenGraphs))
	for _, route := range screenGraphs {
		out = append(out, route.Clone())
	}
	return out
}

// Compile-time interface compliance verification
var _ domain.RouteResolver = (*RouteResolverImpl)(nil)
