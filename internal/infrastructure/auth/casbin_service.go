package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// ScreenModel lets a role view a screen when an exact policy exists
const ScreenModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds an in-memory enforcer for the screen model.
// There is no adapter: policies are seeded from the screen graphs at start.
func NewCasbinService() (*CasbinService, error) {
	m, err := model.NewModelFromString(ScreenModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse screen model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	return &CasbinService{E: e}, nil
}
