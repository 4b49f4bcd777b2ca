package server

import "net/http"

func (s *Server) initRoutes() {
	public := s.APIMiddleware()
	protected := s.APIMiddleware(s.RequireAuth)

	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(noContent, s.CorsMiddleware))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware, s.CorsMiddleware))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteConfig, ChainMiddleware(s.GetConfigHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteConfig, ChainMiddleware(s.MergeConfigHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(s.GetSettingsHandler(), public...))
	s.RegisterRouteHandler("PUT "+RouteSettings, ChainMiddleware(s.PutSettingsHandler(), protected...))

	s.RegisterRouteHandler("GET "+RouteContents, ChainMiddleware(s.ListContentsHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteContents, ChainMiddleware(s.UpsertContentHandler(), protected...))
	s.RegisterRouteHandler("DELETE "+RouteContentByID, ChainMiddleware(s.DeleteContentHandler(), protected...))

	s.RegisterRouteHandler("GET "+RouteTerms, ChainMiddleware(s.ListTermsHandler(), public...))
	s.RegisterRouteHandler("POST "+RouteTerms, ChainMiddleware(s.UpsertTermHandler(), protected...))
	s.RegisterRouteHandler("DELETE "+RouteTermByID, ChainMiddleware(s.DeleteTermHandler(), protected...))

	// Public sites post contact forms here, so saving a lead needs no token.
	s.RegisterRouteHandler("GET "+RouteLeads, ChainMiddleware(s.ListLeadsHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteLeads, ChainMiddleware(s.UpsertLeadHandler(), public...))
	s.RegisterRouteHandler("DELETE "+RouteLeadByID, ChainMiddleware(s.DeleteLeadHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteLeadsExport, ChainMiddleware(s.ExportLeadsHandler(), protected...))

	s.RegisterRouteHandler("GET "+RouteSegment, ChainMiddleware(s.GetSegmentHandler(), protected...))
	s.RegisterRouteHandler("PUT "+RouteSegment, ChainMiddleware(s.PutSegmentHandler(), protected...))

	s.RegisterRouteHandler("GET "+RouteSitemap, ChainMiddleware(s.SitemapHandler(), public...))
	s.RegisterRouteHandler("GET "+RouteRobots, ChainMiddleware(s.RobotsHandler(), public...))

	if s.hub != nil {
		s.RegisterRouteHandler("GET "+RouteWebsocket, ChainMiddleware(s.WebsocketHandler(), s.RecoverMiddleware, s.LoggingMiddleware, s.TenantMiddleware))
	}
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
