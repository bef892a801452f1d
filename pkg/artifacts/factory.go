package artifacts

import (
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rotisserie/eris"
)

// Factory holds what is needed to build a contract creation transaction.
type Factory struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
	Artifact *Artifact
}

// NewFactory validates that a can be deployed as-is.
func NewFactory(a *Artifact) (*Factory, error) {
	if a.HasUnlinkedLibraries() {
		return nil, eris.Wrapf(ErrUnlinkedLibraries, "contract %s", a.ContractName)
	}
	code := strings.TrimSpace(a.Bytecode)
	if code == "" || code == "0x" {
		return nil, eris.Wrapf(ErrNotDeployable, "contract %s (interface or abstract?)", a.ContractName)
	}
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	bytecode, err := hexutil.Decode(code)
	if err != nil {
		return nil, eris.Wrapf(err, "decode bytecode of %s", a.ContractName)
	}
	return &Factory{
		Name:     a.ContractName,
		ABI:      a.ABI,
		Bytecode: bytecode,
		Artifact: a,
	}, nil
}

// DeployData returns the creation code followed by the ABI-encoded
// constructor arguments.
func (f *Factory) DeployData(args ...any) ([]byte, error) {
	input, err := f.ABI.Pack("", args...)
	if err != nil {
		return nil, eris.Wrapf(err, "pack constructor arguments for %s", f.Name)
	}
	data := make([]byte, 0, len(f.Bytecode)+len(input))
	data = append(data, f.Bytecode...)
	return append(data, input...), nil
}

// ParseArgs converts command line strings into constructor argument values.
func (f *Factory) ParseArgs(raw []string) ([]any, error) {
	inputs := f.ABI.Constructor.Inputs
	if len(raw) != len(inputs) {
		return nil, eris.Errorf("%s constructor takes %d arguments, got %d", f.Name, len(inputs), len(raw))
	}
	out := make([]any, len(raw))
	for i, in := range inputs {
		v, err := parseArg(in.Type, raw[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = "#" + strconv.Itoa(i)
			}
			return nil, eris.Wrapf(err, "argument %s (%s)", name, in.Type.String())
		}
		out[i] = v
	}
	return out, nil
}

func parseArg(t abi.Type, s string) (any, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, eris.Errorf("%q is not an address", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, eris.Errorf("want %d bytes, got %d", t.Size, len(b))
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil
	case abi.IntTy, abi.UintTy:
		return parseInteger(t, s)
	default:
		return nil, eris.Errorf("unsupported constructor argument type %s", t.String())
	}
}

func parseInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, eris.Errorf("%q is not an integer", s)
	}

	signed := t.T == abi.IntTy
	var lo, hi *big.Int
	if signed {
		hi = new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		lo = new(big.Int).Neg(hi)
		hi.Sub(hi, big.NewInt(1))
	} else {
		lo = big.NewInt(0)
		hi = new(big.Int).Lsh(big.NewInt(1), uint(t.Size))
		hi.Sub(hi, big.NewInt(1))
	}
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return nil, eris.Errorf("%s out of range for %s", s, t.String())
	}

	// abi only maps 8/16/32/64-bit integers to native types
	if t.GetType().Kind() == reflect.Ptr {
		return n, nil
	}
	v := reflect.New(t.GetType()).Elem()
	if signed {
		v.SetInt(n.Int64())
	} else {
		v.SetUint(n.Uint64())
	}
	return v.Interface(), nil
}
