package webpay

type initRequest struct {
	ObligationID uint   `json:"obligationId"`
	BuyOrder     string `json:"buyOrder"`
	SessionID    string `json:"sessionId"`
}

// confirmRequest accepts the gateway's own field name too.
type confirmRequest struct {
	Token   string `json:"token"`
	TokenWS string `json:"token_ws"`
}

func (r confirmRequest) token() string {
	if r.Token != "" {
		return r.Token
	}
	return r.TokenWS
}
