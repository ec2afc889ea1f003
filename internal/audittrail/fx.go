package audittrail

import (
	"github.com/adlift/cashout/internal/audittrail/repository"
	"github.com/adlift/cashout/internal/audittrail/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audittrail.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
