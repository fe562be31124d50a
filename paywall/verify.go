package paywall

import (
	"bytes"
	"fmt"

	"github.com/bitfsorg/vanitypay-go/identity"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// CommitmentTag is the first push of the OP_RETURN output that binds a
// payment transaction to its payer and invoice.
const CommitmentTag = "vanitypay"

// Payment is a payment transaction accepted by VerifyPayment.
type Payment struct {
	TxID      string
	Amount    uint64
	Payer     identity.ID
	InvoiceID string
}

// CommitmentScript builds the data output
// OP_FALSE OP_RETURN <CommitmentTag> <payer> <invoiceID>.
func CommitmentScript(payer identity.ID, invoiceID string) (*script.Script, error) {
	if payer.IsZero() || invoiceID == "" {
		return nil, fmt.Errorf("%w: payer and invoice ID are required", ErrInvalidParams)
	}
	s := &script.Script{}
	if err := s.AppendOpcodes(script.OpFALSE, script.OpRETURN); err != nil {
		return nil, err
	}
	if err := s.AppendPushDataArray([][]byte{[]byte(CommitmentTag), payer[:], []byte(invoiceID)}); err != nil {
		return nil, err
	}
	return s, nil
}

// AddCommitment appends the zero-value commitment output to tx.
func AddCommitment(tx *transaction.Transaction, payer identity.ID, invoiceID string) error {
	s, err := CommitmentScript(payer, invoiceID)
	if err != nil {
		return err
	}
	tx.AddOutput(&transaction.TransactionOutput{Satoshis: 0, LockingScript: s})
	return nil
}

// parseCommitment reports the payer and invoice ID of a commitment output.
func parseCommitment(s *script.Script) (identity.ID, string, bool) {
	if s == nil || !s.IsData() {
		return identity.Zero, "", false
	}
	chunks, err := script.DecodeScript(*s, script.DecodeOptionsParseOpReturn)
	if err != nil {
		return identity.Zero, "", false
	}
	var pushes [][]byte
	for _, c := range chunks {
		if c.Op == script.OpFALSE || c.Op == script.OpRETURN {
			continue
		}
		pushes = append(pushes, c.Data)
	}
	if len(pushes) != 3 || string(pushes[0]) != CommitmentTag ||
		len(pushes[1]) != identity.Size || len(pushes[2]) == 0 {
		return identity.Zero, "", false
	}
	var payer identity.ID
	copy(payer[:], pushes[1])
	return payer, string(pushes[2]), true
}

// VerifyPayment parses rawTx, sums the P2PKH outputs paying payTo and reads
// the commitment output naming the payer and invoice.
//
// The transaction must spend at least one input. Signatures and input
// values are left to the node: callers MUST broadcast the transaction and
// see it accepted before recording the payment.
func VerifyPayment(rawTx []byte, payTo identity.ID) (*Payment, error) {
	if payTo.IsZero() {
		return nil, fmt.Errorf("%w: zero pay-to identity", ErrInvalidParams)
	}
	if len(rawTx) == 0 {
		return nil, fmt.Errorf("%w: empty raw transaction", ErrInvalidTx)
	}

	tx, err := transaction.NewTransactionFromBytes(rawTx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	if len(tx.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrInvalidTx)
	}

	p := &Payment{TxID: tx.TxID().String()}
	found, committed := false, false
	for _, output := range tx.Outputs {
		if output.LockingScript == nil {
			continue
		}
		if payer, invoiceID, ok := parseCommitment(output.LockingScript); ok {
			if committed {
				return nil, fmt.Errorf("%w: more than one commitment output", ErrInvalidTx)
			}
			p.Payer, p.InvoiceID, committed = payer, invoiceID, true
			continue
		}
		if !output.LockingScript.IsP2PKH() {
			continue
		}
		pkh, err := output.LockingScript.PublicKeyHash()
		if err != nil || !bytes.Equal(pkh, payTo[:]) {
			continue
		}
		if p.Amount+output.Satoshis < p.Amount {
			return nil, fmt.Errorf("%w: output sum overflows", ErrInvalidTx)
		}
		p.Amount += output.Satoshis
		found = true
	}
	if !found {
		return nil, ErrNoMatchingOutput
	}
	if !committed {
		return nil, ErrMissingCommitment
	}
	return p, nil
}
