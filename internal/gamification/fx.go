package gamification

import (
	"github.com/adlift/cashout/internal/gamification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gamification.service",
	fx.Provide(service.NewService),
)
