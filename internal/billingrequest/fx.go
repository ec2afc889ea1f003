package billingrequest

import (
	"github.com/adlift/cashout/internal/billingrequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingrequest.service",
	fx.Provide(service.NewService),
)
