package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"akipsinv/internal/emitter"
	"akipsinv/internal/inventory"
	"akipsinv/internal/version"
)

// healthCheck reports server liveness.
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Get().Version,
	})
}

// snapshot resolves the inventory for a read request, honoring the cache.
func (s *Server) snapshot(c echo.Context) (*inventory.Snapshot, error) {
	snap, err := s.service.Inventory(c.Request().Context(), inventory.ResolveOptions{UseCache: true})
	if err != nil {
		return nil, InternalError("inventory resolution failed", err.Error())
	}
	return snap, nil
}

// getInventory returns the full inventory. The default JSON body is the
// shape an Ansible external inventory script prints; format=yaml returns a
// static YAML inventory instead.
func (s *Server) getInventory(c echo.Context) error {
	snap, err := s.snapshot(c)
	if err != nil {
		return err
	}

	switch format := c.QueryParam("format"); format {
	case "", "json":
		return c.JSON(http.StatusOK, emitter.DynamicInventory(snap))
	case "yaml":
		data, err := emitter.YAMLInventory(snap)
		if err != nil {
			return InternalError("inventory encoding failed", err.Error())
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	default:
		return BadRequestError("invalid format", "format must be json or yaml")
	}
}

// listHosts returns every resolved host.
func (s *Server) listHosts(c echo.Context) error {
	snap, err := s.snapshot(c)
	if err != nil {
		return err
	}

	hosts := make([]*inventory.ResolvedHost, 0, len(snap.Hosts))
	for _, name := range snap.HostNames() {
		hosts = append(hosts, snap.Hosts[name])
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count": len(hosts),
		"hosts": hosts,
	})
}

// getHost returns one resolved host.
func (s *Server) getHost(c echo.Context) error {
	snap, err := s.snapshot(c)
	if err != nil {
		return err
	}

	name := c.Param("name")
	host, ok := snap.Hosts[name]
	if !ok {
		return NotFoundError("host", name)
	}
	return c.JSON(http.StatusOK, host)
}

// listGroups returns the groups visited during resolution, in visit order.
func (s *Server) listGroups(c echo.Context) error {
	snap, err := s.snapshot(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":  len(snap.Groups),
		"groups": snap.Groups,
	})
}

// getGroupHosts returns the hosts of one group.
func (s *Server) getGroupHosts(c echo.Context) error {
	snap, err := s.snapshot(c)
	if err != nil {
		return err
	}

	name := c.Param("name")
	if !snap.HasGroup(name) {
		return NotFoundError("group", name)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"group": name,
		"hosts": snap.GroupHosts(name),
	})
}

// refresh forces recomputation and repopulates the cache.
func (s *Server) refresh(c echo.Context) error {
	snap, err := s.service.Inventory(c.Request().Context(), inventory.ResolveOptions{ForceRefresh: true})
	if err != nil {
		return InternalError("inventory refresh failed", err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":           snap.ID,
		"generated_at": snap.GeneratedAt,
		"groups":       len(snap.Groups),
		"hosts":        len(snap.Hosts),
	})
}
