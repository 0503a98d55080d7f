package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 鉴权错误 100xx
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 优惠券模块错误 200xx
	ErrCouponNotFound    = 20001
	ErrCouponInactive    = 20002
	ErrCouponExpired     = 20003
	ErrCouponLimit       = 20004
	ErrCouponNotEligible = 20005
	ErrCouponMinAmount   = 20006
	ErrCouponInvalid     = 20007

	// 订单 / 支付错误 300xx
	ErrOrderNotFound       = 30001
	ErrTransactionMismatch = 30002
	ErrTransactionInvalid  = 30003
	ErrOrderProcessed      = 30004
	ErrProductNotFound     = 30005
	ErrProvisionFailed     = 30006

	// 抽奖 / 礼包错误 400xx
	ErrSpinUnavailable = 40001
	ErrSpinInactive    = 40002
	ErrPrizeNotFound   = 40003
	ErrGiftNotFound    = 40004
	ErrGiftClaimed     = 40005
	ErrGiftLocked      = 40006

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
