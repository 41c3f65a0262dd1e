package ac101dev

import (
	"context"
	"math"

	"audiocodec-go/drivers/ac101"
	"audiocodec-go/errcode"
	"audiocodec-go/services/hal/internal/core"
	"audiocodec-go/services/hal/internal/util"
	"audiocodec-go/types"
)

// Params defines wiring and start-up settings for one AC101 instance.
type Params = types.CodecParams

// Builder registration.
func init() { core.RegisterBuilder("ac101", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, err := decodeParams(in.Params)
	if err != nil {
		return nil, err
	}
	if p.Bus == "" || p.Addr > 0x7F {
		return nil, errcode.InvalidParams
	}
	if p.Bits != 0 && !ac101.Resolution(p.Bits).Valid() {
		return nil, errcode.InvalidParams
	}
	if math.IsNaN(float64(p.Volume)) || p.Volume < 0 || p.Volume > 1 {
		return nil, errcode.InvalidParams
	}
	var mode ac101.Mode
	if p.Mode != "" {
		m, ok := ac101.ParseMode(p.Mode)
		if !ok {
			return nil, errcode.InvalidParams
		}
		mode = m
	}
	if p.Domain == "" {
		p.Domain = "audio"
	}
	if p.Name == "" {
		p.Name = in.ID
	}
	if p.Addr == 0 {
		p.Addr = ac101.AddressDefault
	}

	// Claim I2C (serialised by provider).
	i2c, err := in.Res.Reg.ClaimI2C(in.ID, core.ResourceID(p.Bus))
	if err != nil {
		return nil, err
	}

	return &Device{
		id:     in.ID,
		a:      core.CapAddr{Domain: p.Domain, Kind: types.KindCodec, Name: p.Name},
		res:    in.Res,
		i2c:    i2c,
		params: p,
		mode:   mode,
	}, nil
}

func decodeParams(v any) (Params, error) {
	var p Params
	if err := util.DecodeJSON(v, &p); err != nil {
		return Params{}, errcode.InvalidParams
	}
	return p, nil
}
