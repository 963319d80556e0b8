package models

// SignRequest asks for a single-use mint authorization for the caller's
// wallet on one chain.
type SignRequest struct {
	UserAddress string `json:"userAddress" binding:"required"`
	ChainID     int64  `json:"chainId" binding:"required"`
}

type SignResponse struct {
	Signature string `json:"signature"`
}
