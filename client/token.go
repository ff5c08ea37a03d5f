package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/token"
)

// CreateAccountInstruction returns an instruction that allocates a rent
// exempt account of given size for owner. Both payer and the new account
// must sign the transaction.
func (c *Client) CreateAccountInstruction(payer, account, owner solana.PublicKey, space int) (solana.Instruction, error) {
	lamports, err := c.minimumBalance(space)
	if err != nil {
		return nil, err
	}
	return system.NewCreateAccountInstruction(lamports, uint64(space), owner, payer, account).Build(), nil
}

// CreateMint creates a new mint controlled by authority and returns its
// address.
func (c *Client) CreateMint(ctx context.Context, payer, authority solana.PrivateKey, decimals uint8) (solana.PublicKey, error) {
	mint := solana.NewWallet().PrivateKey
	create, err := c.CreateAccountInstruction(payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID, token.MintLen)
	if err != nil {
		return solana.PublicKey{}, err
	}
	initialize := token.NewInitializeMintInstruction(mint.PublicKey(), authority.PublicKey(), nil, decimals)
	if _, err := c.SubmitTx(ctx, []solana.PrivateKey{payer, mint}, create, initialize); err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "create mint")
	}
	return mint.PublicKey(), nil
}

// tokenAccountInstructions returns the instructions that create a token
// account of mint owned by owner.
func (c *Client) tokenAccountInstructions(payer, account, mint, owner solana.PublicKey) ([]solana.Instruction, error) {
	create, err := c.CreateAccountInstruction(payer, account, solana.TokenProgramID, token.AccountLen)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{
		create,
		token.NewInitializeAccountInstruction(account, mint, owner),
	}, nil
}

// CreateTokenAccount creates an empty token account of mint owned by owner
// and returns its address.
func (c *Client) CreateTokenAccount(ctx context.Context, payer solana.PrivateKey, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	account := solana.NewWallet().PrivateKey
	ixs, err := c.tokenAccountInstructions(payer.PublicKey(), account.PublicKey(), mint, owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := c.SubmitTx(ctx, []solana.PrivateKey{payer, account}, ixs...); err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "create token account")
	}
	return account.PublicKey(), nil
}

// MintTo issues amount new tokens into destination.
func (c *Client) MintTo(ctx context.Context, authority solana.PrivateKey, mint, destination solana.PublicKey, amount uint64) error {
	ix := token.NewMintToInstruction(mint, destination, authority.PublicKey(), amount)
	if _, err := c.SubmitTx(ctx, []solana.PrivateKey{authority}, ix); err != nil {
		return errors.Wrap(err, "mint")
	}
	return nil
}

// Transfer moves amount tokens between accounts of the same mint.
func (c *Client) Transfer(ctx context.Context, owner solana.PrivateKey, source, destination solana.PublicKey, amount uint64) error {
	ix := token.NewTransferInstruction(source, destination, owner.PublicKey(), amount)
	if _, err := c.SubmitTx(ctx, []solana.PrivateKey{owner}, ix); err != nil {
		return errors.Wrap(err, "transfer")
	}
	return nil
}
