package service

import (
	"context"
	"strings"
	"topup_store/internal/domain/provision/strategy"
	"topup_store/pkg/response"

	"go.uber.org/zap"
)

// RoleLookup SmileOne 角色查询
type RoleLookup interface {
	LookupRole(ctx context.Context, region, userID, zoneID string) (string, error)
}

// PlayerValidator UniPin 账号校验
type PlayerValidator interface {
	Validate(ctx context.Context, game, userID, zoneID string) (string, error)
}

// PlayerInfo 校验通过的玩家信息
type PlayerInfo struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	ZoneID   string `json:"zoneId,omitempty"`
	Source   string `json:"source"`
}

type PlayerService interface {
	VerifyPlayer(ctx context.Context, game, region, userID, zoneID string) (*PlayerInfo, error)
}

type playerService struct {
	smileOne RoleLookup
	unipin   PlayerValidator
	log      *zap.Logger
}

func NewPlayerService(smileOne RoleLookup, unipin PlayerValidator, log *zap.Logger) PlayerService {
	return &playerService{smileOne: smileOne, unipin: unipin, log: log}
}

// VerifyPlayer SmileOne 服务的区服用 SmileOne 查角色，其余走 UniPin
func (s *playerService) VerifyPlayer(ctx context.Context, game, region, userID, zoneID string) (*PlayerInfo, error) {
	game = strings.ToLower(strings.TrimSpace(game))
	region = strings.ToLower(strings.TrimSpace(region))

	var (
		name   string
		source string
		err    error
	)
	if strategy.UsesSmileOne(game, region) {
		source = strategy.ProviderSmileOne
		name, err = s.smileOne.LookupRole(ctx, region, userID, zoneID)
	} else {
		source = "unipin"
		name, err = s.unipin.Validate(ctx, game, userID, zoneID)
	}
	if err != nil {
		s.log.Info("player verification failed",
			zap.String("game", game), zap.String("user_id", userID), zap.String("source", source), zap.Error(err))
		return nil, response.BadRequest(response.ErrInvalidParam, "Player not found")
	}

	return &PlayerInfo{Username: name, UserID: userID, ZoneID: zoneID, Source: source}, nil
}
