package strategy

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"topup_store/internal/pkg/config"
)

const (
	unipinValidatePath  = "/in-game-topup/user/validate"
	playerLookupTimeout = 10 * time.Second // 玩家校验的唯一超时，发货调用不设超时
)

// unipinGameCodes 本地游戏名到 UniPin 游戏编码
var unipinGameCodes = map[string]string{
	"mobilelegends": "mobile_legends",
	"freefire":      "freefire",
	"pubg":          "pubgm",
	"honorofkings":  "honor_of_kings",
	"magicchess":    "magic_chess_go_go",
	"bloodstrike":   "blood_strike",
	"genshinimpact": "genshin_impact",
}

// UniPinValidator 只用于玩家账号校验，不负责充值
type UniPinValidator struct {
	cfg    config.UniPinConfig
	client *http.Client
	now    func() time.Time
}

func NewUniPinValidator(cfg config.UniPinConfig) *UniPinValidator {
	return &UniPinValidator{
		cfg:    cfg,
		client: &http.Client{},
		now:    time.Now,
	}
}

type unipinValidateResponse struct {
	Status          int    `json:"status"`
	ValidationToken string `json:"validation_token"`
	Username        string `json:"username"`
	Error           struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Validate 校验玩家 ID，超时 10 秒
func (v *UniPinValidator) Validate(ctx context.Context, game, userID, zoneID string) (string, error) {
	code, ok := unipinGameCodes[game]
	if !ok {
		code = game
	}

	ctx, cancel := context.WithTimeout(ctx, playerLookupTimeout)
	defer cancel()

	fields := map[string]string{"userid": userID}
	if zoneID != "" {
		fields["zoneid"] = zoneID
	}
	body, err := json.Marshal(map[string]interface{}{
		"game_code": code,
		"fields":    fields,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.BaseURL+unipinValidatePath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	ts := strconv.FormatInt(v.now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(v.cfg.SecretKey))
	mac.Write([]byte(v.cfg.PartnerID + ts + unipinValidatePath))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("partnerid", v.cfg.PartnerID)
	req.Header.Set("timestamp", ts)
	req.Header.Set("path", unipinValidatePath)
	req.Header.Set("auth", hex.EncodeToString(mac.Sum(nil)))

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unipin request failed: %w", err)
	}
	defer resp.Body.Close()

	var out unipinValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unipin response decode failed: %w", err)
	}
	if out.Status != 1 {
		msg := out.Error.Message
		if msg == "" {
			msg = "player not found"
		}
		return "", fmt.Errorf("unipin: %s", msg)
	}
	return out.Username, nil
}
