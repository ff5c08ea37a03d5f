package token

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/rent"
)

// Processor executes token program instructions.
type Processor struct{}

var _ tokenswap.Program = Processor{}

// Register adds the token program to the ledger under its well known id.
func Register(r tokenswap.Registry) error {
	return r.Register(solana.TokenProgramID, Processor{})
}

func (Processor) Process(ctx context.Context, env tokenswap.Env, accounts []*tokenswap.AccountInfo, data []byte) error {
	ix, err := Decode(data)
	if err != nil {
		return err
	}
	iter := tokenswap.NewAccounts(accounts)
	switch ix := ix.(type) {
	case *InitializeMint:
		tokenswap.Logf(ctx, "Instruction: InitializeMint")
		return initializeMint(iter, ix)
	case *InitializeAccount:
		tokenswap.Logf(ctx, "Instruction: InitializeAccount")
		return initializeAccount(iter)
	case *Transfer:
		tokenswap.Logf(ctx, "Instruction: Transfer")
		return transfer(iter, ix)
	case *SetAuthority:
		tokenswap.Logf(ctx, "Instruction: SetAuthority")
		return setAuthority(iter, ix)
	case *MintTo:
		tokenswap.Logf(ctx, "Instruction: MintTo")
		return mintTo(iter, ix)
	case *CloseAccount:
		tokenswap.Logf(ctx, "Instruction: CloseAccount")
		return closeAccount(iter)
	case *FreezeAccount:
		tokenswap.Logf(ctx, "Instruction: FreezeAccount")
		return toggleFreeze(iter, true)
	case *ThawAccount:
		tokenswap.Logf(ctx, "Instruction: ThawAccount")
		return toggleFreeze(iter, false)
	}
	return errors.Wrapf(ErrInvalidInstruction, "unexpected %T", ix)
}

func initializeMint(iter *tokenswap.Accounts, ix *InitializeMint) error {
	mintInfo, err := iter.Next()
	if err != nil {
		return err
	}
	rentInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(mintInfo); err != nil {
		return err
	}

	mint, err := UnpackMintUnchecked(mintInfo.Data)
	if err != nil {
		return err
	}
	if mint.IsInitialized {
		return errors.Wrapf(ErrAlreadyInUse, "mint %s", mintInfo.Key)
	}
	if err := checkRentExempt(rentInfo, mintInfo); err != nil {
		return err
	}

	authority := ix.MintAuthority
	mint.MintAuthority = &authority
	mint.Decimals = ix.Decimals
	mint.IsInitialized = true
	mint.FreezeAuthority = ix.FreezeAuthority
	return PackMint(mint, mintInfo.Data)
}

func initializeAccount(iter *tokenswap.Accounts) error {
	accountInfo, err := iter.Next()
	if err != nil {
		return err
	}
	mintInfo, err := iter.Next()
	if err != nil {
		return err
	}
	ownerInfo, err := iter.Next()
	if err != nil {
		return err
	}
	rentInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(accountInfo); err != nil {
		return err
	}

	account, err := UnpackAccountUnchecked(accountInfo.Data)
	if err != nil {
		return err
	}
	if account.State != StateUninitialized {
		return errors.Wrapf(ErrAlreadyInUse, "account %s", accountInfo.Key)
	}
	if err := checkRentExempt(rentInfo, accountInfo); err != nil {
		return err
	}
	if mintInfo.Key.Equals(NativeMint) {
		return errors.Wrap(ErrNativeNotSupported, "wrapped lamports")
	}
	if !mintInfo.Owner.Equals(solana.TokenProgramID) {
		return errors.Wrapf(ErrInvalidMint, "mint %s not owned by the token program", mintInfo.Key)
	}
	if _, err := UnpackMint(mintInfo.Data); err != nil {
		return errors.Wrapf(ErrInvalidMint, "mint %s: %s", mintInfo.Key, err)
	}

	*account = Account{
		Mint:  mintInfo.Key,
		Owner: ownerInfo.Key,
		State: StateInitialized,
	}
	return PackAccount(account, accountInfo.Data)
}

func transfer(iter *tokenswap.Accounts, ix *Transfer) error {
	sourceInfo, err := iter.Next()
	if err != nil {
		return err
	}
	destInfo, err := iter.Next()
	if err != nil {
		return err
	}
	authorityInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(sourceInfo); err != nil {
		return err
	}
	if err := checkOwned(destInfo); err != nil {
		return err
	}

	source, err := UnpackAccount(sourceInfo.Data)
	if err != nil {
		return err
	}
	dest, err := UnpackAccount(destInfo.Data)
	if err != nil {
		return err
	}
	if source.IsFrozen() || dest.IsFrozen() {
		return ErrAccountFrozen
	}
	if source.IsNativeAccount() || dest.IsNativeAccount() {
		return ErrNativeNotSupported
	}
	if source.Amount < ix.Amount {
		return errors.Wrapf(ErrInsufficientFunds, "have %d, need %d", source.Amount, ix.Amount)
	}
	if !source.Mint.Equals(dest.Mint) {
		return ErrMintMismatch
	}
	if err := validateOwner(source.Owner, authorityInfo); err != nil {
		return err
	}

	if sourceInfo.Key.Equals(destInfo.Key) {
		return nil
	}
	if dest.Amount+ix.Amount < dest.Amount {
		return ErrOverflow
	}
	source.Amount -= ix.Amount
	dest.Amount += ix.Amount
	if err := PackAccount(source, sourceInfo.Data); err != nil {
		return err
	}
	return PackAccount(dest, destInfo.Data)
}

func setAuthority(iter *tokenswap.Accounts, ix *SetAuthority) error {
	targetInfo, err := iter.Next()
	if err != nil {
		return err
	}
	authorityInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(targetInfo); err != nil {
		return err
	}

	switch len(targetInfo.Data) {
	case AccountLen:
		account, err := UnpackAccount(targetInfo.Data)
		if err != nil {
			return err
		}
		if account.IsFrozen() {
			return ErrAccountFrozen
		}
		switch ix.AuthorityType {
		case AuthorityAccountOwner:
			if err := validateOwner(account.Owner, authorityInfo); err != nil {
				return err
			}
			if ix.NewAuthority == nil {
				return errors.Wrap(ErrInvalidInstruction, "account owner is required")
			}
			account.Owner = *ix.NewAuthority
			account.Delegate = nil
			account.DelegatedAmount = 0
		case AuthorityCloseAccount:
			current := account.Owner
			if account.CloseAuthority != nil {
				current = *account.CloseAuthority
			}
			if err := validateOwner(current, authorityInfo); err != nil {
				return err
			}
			account.CloseAuthority = ix.NewAuthority
		default:
			return errors.Wrapf(ErrAuthorityTypeNotSupported, "type %d on account", ix.AuthorityType)
		}
		return PackAccount(account, targetInfo.Data)

	case MintLen:
		mint, err := UnpackMint(targetInfo.Data)
		if err != nil {
			return err
		}
		switch ix.AuthorityType {
		case AuthorityMintTokens:
			if mint.MintAuthority == nil {
				return ErrFixedSupply
			}
			if err := validateOwner(*mint.MintAuthority, authorityInfo); err != nil {
				return err
			}
			mint.MintAuthority = ix.NewAuthority
		case AuthorityFreezeAccount:
			if mint.FreezeAuthority == nil {
				return ErrMintCannotFreeze
			}
			if err := validateOwner(*mint.FreezeAuthority, authorityInfo); err != nil {
				return err
			}
			mint.FreezeAuthority = ix.NewAuthority
		default:
			return errors.Wrapf(ErrAuthorityTypeNotSupported, "type %d on mint", ix.AuthorityType)
		}
		return PackMint(mint, targetInfo.Data)
	}
	return errors.Wrapf(errors.ErrInvalidArgument, "%d bytes is neither a mint nor an account", len(targetInfo.Data))
}

func mintTo(iter *tokenswap.Accounts, ix *MintTo) error {
	mintInfo, err := iter.Next()
	if err != nil {
		return err
	}
	destInfo, err := iter.Next()
	if err != nil {
		return err
	}
	authorityInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(mintInfo); err != nil {
		return err
	}
	if err := checkOwned(destInfo); err != nil {
		return err
	}

	dest, err := UnpackAccount(destInfo.Data)
	if err != nil {
		return err
	}
	if dest.IsFrozen() {
		return ErrAccountFrozen
	}
	if dest.IsNativeAccount() {
		return ErrNativeNotSupported
	}
	if !mintInfo.Key.Equals(dest.Mint) {
		return ErrMintMismatch
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil {
		return ErrFixedSupply
	}
	if err := validateOwner(*mint.MintAuthority, authorityInfo); err != nil {
		return err
	}
	if mint.Supply+ix.Amount < mint.Supply || dest.Amount+ix.Amount < dest.Amount {
		return ErrOverflow
	}
	mint.Supply += ix.Amount
	dest.Amount += ix.Amount
	if err := PackAccount(dest, destInfo.Data); err != nil {
		return err
	}
	return PackMint(mint, mintInfo.Data)
}

func closeAccount(iter *tokenswap.Accounts) error {
	sourceInfo, err := iter.Next()
	if err != nil {
		return err
	}
	destInfo, err := iter.Next()
	if err != nil {
		return err
	}
	authorityInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(sourceInfo); err != nil {
		return err
	}
	if sourceInfo.Key.Equals(destInfo.Key) {
		return errors.Wrap(errors.ErrInvalidAccountData, "cannot close into itself")
	}

	source, err := UnpackAccount(sourceInfo.Data)
	if err != nil {
		return err
	}
	if !source.IsNativeAccount() && source.Amount != 0 {
		return errors.Wrapf(ErrNonNativeHasBalance, "balance %d", source.Amount)
	}
	if source.IsFrozen() {
		return ErrAccountFrozen
	}
	authority := source.Owner
	if source.CloseAuthority != nil {
		authority = *source.CloseAuthority
	}
	if err := validateOwner(authority, authorityInfo); err != nil {
		return err
	}

	if destInfo.Lamports+sourceInfo.Lamports < destInfo.Lamports {
		return ErrOverflow
	}
	destInfo.Lamports += sourceInfo.Lamports
	sourceInfo.Lamports = 0
	for i := range sourceInfo.Data {
		sourceInfo.Data[i] = 0
	}
	return nil
}

func toggleFreeze(iter *tokenswap.Accounts, freeze bool) error {
	accountInfo, err := iter.Next()
	if err != nil {
		return err
	}
	mintInfo, err := iter.Next()
	if err != nil {
		return err
	}
	authorityInfo, err := iter.Next()
	if err != nil {
		return err
	}
	if err := checkOwned(accountInfo); err != nil {
		return err
	}

	account, err := UnpackAccount(accountInfo.Data)
	if err != nil {
		return err
	}
	if freeze == account.IsFrozen() {
		return errors.Wrapf(ErrInvalidState, "account frozen: %v", account.IsFrozen())
	}
	if account.IsNativeAccount() {
		return ErrNativeNotSupported
	}
	if !mintInfo.Key.Equals(account.Mint) {
		return ErrMintMismatch
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return err
	}
	if mint.FreezeAuthority == nil {
		return ErrMintCannotFreeze
	}
	if err := validateOwner(*mint.FreezeAuthority, authorityInfo); err != nil {
		return err
	}

	if freeze {
		account.State = StateFrozen
	} else {
		account.State = StateInitialized
	}
	return PackAccount(account, accountInfo.Data)
}

// validateOwner requires that the authority account is the expected one and
// that it signed.
func validateOwner(expected solana.PublicKey, authority *tokenswap.AccountInfo) error {
	if !expected.Equals(authority.Key) {
		return errors.Wrapf(ErrOwnerMismatch, "want %s, got %s", expected, authority.Key)
	}
	if !authority.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "authority %s", authority.Key)
	}
	return nil
}

// checkOwned requires the account to hold token program state.
func checkOwned(info *tokenswap.AccountInfo) error {
	if !info.Owner.Equals(solana.TokenProgramID) {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "account %s owned by %s", info.Key, info.Owner)
	}
	return nil
}

func checkRentExempt(rentInfo, info *tokenswap.AccountInfo) error {
	r, err := rent.FromAccount(rentInfo)
	if err != nil {
		return err
	}
	if !r.IsExempt(info.Lamports, len(info.Data)) {
		return errors.Wrapf(ErrNotRentExempt, "account %s holds %d, needs %d",
			info.Key, info.Lamports, r.MinimumBalance(len(info.Data)))
	}
	return nil
}
