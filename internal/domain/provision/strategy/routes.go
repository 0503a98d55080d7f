package strategy

import (
	"fmt"
	"strings"
)

// GhorAPIName 商品配置的供应商名为该值时优先走 Ghor
const GhorAPIName = "TopUp Ghor Api"

const anyRegion = "*"

// Route 路由结果：供应商及其商品编码
type Route struct {
	Provider    string
	ProductCode string
}

type routeKey struct {
	game   string
	region string
}

// rule ghorCode 为 Ghor 侧固定商品编码；alternate 非空时，只有商品指定 Ghor 才走 Ghor，否则走 alternate
type rule struct {
	ghorCode  string
	alternate string
}

var routeTable = map[routeKey]rule{
	{"mobilelegends", "brazil"}:      {ghorCode: "1101", alternate: ProviderSmileOne},
	{"mobilelegends", "philippines"}: {ghorCode: "1102", alternate: ProviderSmileOne},
	{"mobilelegends", "indonesia"}:   {ghorCode: "1103"},
	{"mobilelegends", "malaysia"}:    {ghorCode: "1104"},
	{"freefire", anyRegion}:          {ghorCode: "1201", alternate: ProviderBangla},
	{"pubg", anyRegion}:              {ghorCode: "1301"},
	{"honorofkings", anyRegion}:      {ghorCode: "1401"},
	{"magicchess", anyRegion}:        {ghorCode: "1501"},
	{"bloodstrike", anyRegion}:       {ghorCode: "1601"},
	{"genshinimpact", anyRegion}:     {ghorCode: "1701"},
}

// Resolve 按 (游戏, 区服, 商品供应商名) 选择供应商
func Resolve(game, region, apiName string) (Route, error) {
	game = strings.ToLower(strings.TrimSpace(game))
	region = strings.ToLower(strings.TrimSpace(region))

	r, ok := routeTable[routeKey{game, region}]
	if !ok {
		r, ok = routeTable[routeKey{game, anyRegion}]
	}
	if !ok {
		return Route{}, fmt.Errorf("no provider for game %q region %q", game, region)
	}

	if r.alternate == "" || apiName == GhorAPIName {
		return Route{Provider: ProviderGhor, ProductCode: r.ghorCode}, nil
	}
	return Route{Provider: r.alternate, ProductCode: region}, nil
}

// UsesSmileOne 区服是否由 SmileOne 服务（玩家校验同样走 SmileOne）
func UsesSmileOne(game, region string) bool {
	r, ok := routeTable[routeKey{strings.ToLower(game), strings.ToLower(region)}]
	return ok && r.alternate == ProviderSmileOne
}
