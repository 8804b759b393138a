package wire

import (
	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
)

var validate = validator.New()

// CallRequest is the wire form of eth_call / eth_estimateGas options. Every
// field is optional; present fields must be well formed.
type CallRequest struct {
	From     string `json:"from,omitempty" validate:"omitempty,eth_addr"`
	To       string `json:"to,omitempty" validate:"omitempty,eth_addr"`
	Value    string `json:"value,omitempty"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Data     string `json:"data,omitempty"`
	Input    string `json:"input,omitempty"`
}

// DecodeCallOptions validates req and converts it to typed call options.
// "input" is accepted as an alias for "data"; when both are set they must agree.
func DecodeCallOptions(req CallRequest) (*entity.CallOptions, error) {
	if err := validate.Struct(req); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid call options", err)
	}

	opts := &entity.CallOptions{}
	if req.From != "" {
		from, err := DecodeAddress(req.From)
		if err != nil {
			return nil, err
		}
		opts.From = &from
	}
	if req.To != "" {
		to, err := DecodeAddress(req.To)
		if err != nil {
			return nil, err
		}
		opts.To = &to
	}
	if req.Value != "" {
		v, err := DecodeBigQuantity(req.Value)
		if err != nil {
			return nil, err
		}
		opts.Value = v
	}
	if req.Gas != "" {
		g, err := DecodeIndex(req.Gas)
		if err != nil {
			return nil, apperr.NewInvalidArgErr("invalid gas", err)
		}
		opts.Gas = g
	}
	if req.GasPrice != "" {
		p, err := DecodeBigQuantity(req.GasPrice)
		if err != nil {
			return nil, err
		}
		opts.GasPrice = p
	}

	data := req.Data
	if data == "" {
		data = req.Input
	} else if req.Input != "" && req.Input != data {
		return nil, apperr.NewInvalidArgErr("both \"data\" and \"input\" are set and differ", nil)
	}
	if data != "" {
		b, err := DecodeBytes(data)
		if err != nil {
			return nil, err
		}
		opts.Data = b
	}
	return opts, nil
}
