// Package contract declares the AuctionHouse contract interface used by the
// wallet bid flow. Nothing here signs or sends transactions.
package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const AuctionHouseABI = `[
  {"type":"function","name":"placeBid","stateMutability":"payable",
   "inputs":[{"name":"tokenId","type":"uint256"},{"name":"comment","type":"string"}],"outputs":[]},
  {"type":"function","name":"endAuction","stateMutability":"nonpayable",
   "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"artistCancel","stateMutability":"nonpayable",
   "inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"BidPlaced","anonymous":false,
   "inputs":[
     {"name":"tokenId","type":"uint256","indexed":true},
     {"name":"bidder","type":"address","indexed":true},
     {"name":"amount","type":"uint256","indexed":false},
     {"name":"comment","type":"string","indexed":false}
   ]}
]`

// MaxCommentLength bounds the comment stored on chain with a bid.
const MaxCommentLength = 280

var auctionHouse = mustParse(AuctionHouseABI)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parsing AuctionHouse ABI: %s", err))
	}
	return parsed
}

// PlaceBidCalldata encodes AuctionHouse.placeBid(tokenId, comment). Comments
// longer than MaxCommentLength runes are cut.
func PlaceBidCalldata(tokenId *big.Int, comment string) ([]byte, error) {
	const op = "contract.PlaceBidCalldata"

	if tokenId == nil || tokenId.Sign() < 0 {
		return nil, fmt.Errorf("%s: invalid token id", op)
	}
	if r := []rune(comment); len(r) > MaxCommentLength {
		comment = string(r[:MaxCommentLength])
	}

	data, err := auctionHouse.Pack("placeBid", tokenId, comment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// UnpackPlaceBid decodes placeBid calldata back into its arguments. It exists
// to verify calldata produced by PlaceBidCalldata; the server never reads
// transactions back.
func UnpackPlaceBid(data []byte) (*big.Int, string, error) {
	const op = "contract.UnpackPlaceBid"

	method, err := auctionHouse.MethodById(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if method.Name != "placeBid" {
		return nil, "", fmt.Errorf("%s: unexpected method %s", op, method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return args[0].(*big.Int), args[1].(string), nil
}
