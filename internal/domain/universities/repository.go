package universities

import "context"

// El catálogo es de solo lectura para la API; se carga por migración o seed.
type Repository interface {
	// ListWithoutCampuses devuelve sólo id + nombre.
	ListWithoutCampuses(ctx context.Context) ([]University, error)
	GetByID(ctx context.Context, id int64) (University, error)
	GetCampus(ctx context.Context, id int64) (Campus, error)
}
