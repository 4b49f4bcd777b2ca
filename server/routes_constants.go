package server

// Route path constants
const (
	// Site configuration
	RouteConfig   = "/api/config"
	RouteSettings = "/api/settings"

	// Collections
	RouteContents    = "/api/contents"
	RouteContentByID = "/api/contents/{id}"
	RouteTerms       = "/api/terms"
	RouteTermByID    = "/api/terms/{id}"
	RouteLeads       = "/api/leads"
	RouteLeadByID    = "/api/leads/{id}"
	RouteLeadsExport = "/api/leads/export"

	// Whole segments, used by the remote persistence adapter
	RouteSegment = "/api/segments/{segment}"

	RouteAuthLogin = "/api/auth/login"
	RouteHealth    = "/api/health"

	// Public site files
	RouteSitemap = "/sitemap.xml"
	RouteRobots  = "/robots.txt"

	RouteWebsocket = "/ws"
)
