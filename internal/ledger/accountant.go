package ledger

import (
	"context"
	"errors"
	"fmt"

	"traka/internal/apperrors"
	"traka/internal/models"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
	"traka/pkg/billing"
	"traka/pkg/logger"
)

// Accountant owns the money-adjacent state transitions: the driver
// contribution counters, per-order paid feature unlocks and the violation
// ledger. Every paid operation verifies its purchase token before touching
// any counter.
type Accountant struct {
	users       interfaces.UserRepository
	orders      interfaces.OrderRepository
	violations  interfaces.ViolationRepository
	appConfig   interfaces.AppConfigRepository
	verifier    billing.PurchaseVerifier
	packageName string
	logger      *logger.Logger
}

func NewAccountant(
	users interfaces.UserRepository,
	orders interfaces.OrderRepository,
	violations interfaces.ViolationRepository,
	appConfig interfaces.AppConfigRepository,
	verifier billing.PurchaseVerifier,
	packageName string,
	log *logger.Logger,
) *Accountant {
	return &Accountant{
		users:       users,
		orders:      orders,
		violations:  violations,
		appConfig:   appConfig,
		verifier:    verifier,
		packageName: packageName,
		logger:      log,
	}
}

// RecordPassengerDropoff credits the driver's served-passenger counter when
// a travel passenger scans the driver's barcode. Delivery orders never
// contribute. The increment is a snapshot of 1 + jumlahKerabat at scan
// time; a concurrent jumlahKerabat edit is not re-read.
func (a *Accountant) RecordPassengerDropoff(ctx context.Context, order *models.Order) error {
	if order.OrderType != models.OrderTypeTravel || order.DriverUID == "" {
		return nil
	}

	kerabat := order.JumlahKerabat
	if kerabat < 0 {
		kerabat = 0
	}
	total := int64(1 + kerabat)

	if err := a.users.IncrementTotalServed(ctx, order.DriverUID, total); err != nil {
		return fmt.Errorf("failed to credit served passengers: %w", err)
	}

	a.logger.LogLedgerEvent(order.DriverUID, "passenger_dropoff", map[string]interface{}{
		"order_id":   order.ID,
		"passengers": total,
	})
	return nil
}

// ConfirmContributionPayment verifies the purchase and moves the driver's
// paid-up watermark to the served count read in this call. Passengers
// dropped off between the read and the write stay unpaid until the next
// contribution.
func (a *Accountant) ConfirmContributionPayment(ctx context.Context, driverUID, purchaseToken, orderID, productID string) (int64, error) {
	if purchaseToken == "" || orderID == "" {
		return 0, apperrors.InvalidArgument("purchaseToken dan orderId wajib.")
	}
	if productID == "" {
		productID = utils.ContributionProductID
	}

	user, err := a.users.GetByUID(ctx, driverUID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return 0, apperrors.NotFound("User tidak ditemukan.")
		}
		return 0, apperrors.Internal("Gagal memuat user.", err)
	}

	if err := a.verifyPurchase(ctx, productID, purchaseToken); err != nil {
		return 0, err
	}

	paidUpTo := user.TotalPenumpangServed
	if err := a.users.SetContributionPaid(ctx, driverUID, paidUpTo); err != nil {
		return 0, apperrors.Internal("Gagal menyimpan pembayaran kontribusi.", err)
	}

	a.logger.LogLedgerEvent(driverUID, "contribution_paid", map[string]interface{}{
		"paid_up_to_count": paidUpTo,
		"order_id":         orderID,
	})
	return paidUpTo, nil
}

// ConfirmTrackDriverPayment unlocks live driver tracking on one order for
// its passenger.
func (a *Accountant) ConfirmTrackDriverPayment(ctx context.Context, passengerUID, purchaseToken, orderID, productID string) error {
	if purchaseToken == "" || orderID == "" {
		return apperrors.InvalidArgument("purchaseToken dan orderId wajib.")
	}
	if productID == "" {
		productID = utils.TrackDriverProductID
	}

	order, err := a.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Pesanan tidak ditemukan.")
		}
		return apperrors.Internal("Gagal memuat pesanan.", err)
	}
	if order.PassengerUID != passengerUID {
		return apperrors.PermissionDenied("Anda bukan penumpang pesanan ini.")
	}

	if err := a.verifyPurchase(ctx, productID, purchaseToken); err != nil {
		return err
	}

	if err := a.orders.MarkTrackDriverPaid(ctx, orderID); err != nil {
		return apperrors.Internal("Gagal menyimpan pembayaran.", err)
	}

	a.logger.LogLedgerEvent(passengerUID, "track_driver_paid", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

// ConfirmLacakBarangPayment unlocks package tracking on a delivery order for
// either the sender or the receiver.
func (a *Accountant) ConfirmLacakBarangPayment(ctx context.Context, uid, purchaseToken, orderID string, payer models.LacakBarangPayer, productID string) error {
	if purchaseToken == "" || orderID == "" {
		return apperrors.InvalidArgument("purchaseToken dan orderId wajib.")
	}
	if payer != models.LacakBarangPayerPassenger && payer != models.LacakBarangPayerReceiver {
		return apperrors.InvalidArgument("payerType harus passenger atau receiver.")
	}
	if productID == "" {
		productID = utils.LacakBarangProductID
	}

	order, err := a.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return apperrors.NotFound("Pesanan tidak ditemukan.")
		}
		return apperrors.Internal("Gagal memuat pesanan.", err)
	}
	if order.OrderType != models.OrderTypeKirimBarang {
		return apperrors.FailedPrecondition("Bukan pesanan kirim barang.")
	}
	if payer == models.LacakBarangPayerPassenger && order.PassengerUID != uid {
		return apperrors.PermissionDenied("Anda bukan pengirim pesanan ini.")
	}
	if payer == models.LacakBarangPayerReceiver && order.ReceiverUID != uid {
		return apperrors.PermissionDenied("Anda bukan penerima pesanan ini.")
	}

	if err := a.verifyPurchase(ctx, productID, purchaseToken); err != nil {
		return err
	}

	if err := a.orders.MarkLacakBarangPaid(ctx, orderID, payer); err != nil {
		return apperrors.Internal("Gagal menyimpan pembayaran.", err)
	}

	a.logger.LogLedgerEvent(uid, "lacak_barang_paid", map[string]interface{}{
		"order_id": orderID,
		"payer":    string(payer),
	})
	return nil
}

// ViolationSettlement reports what one violation payment changed.
type ViolationSettlement struct {
	DeductedAmount       int64 `json:"deductedAmount"`
	RemainingOutstanding int64 `json:"remainingOutstanding"`
}

// SettleViolationPayment verifies the purchase and settles the passenger's
// oldest unpaid violation. One payment settles exactly one record; the
// outstanding fee floors at zero even when the record amount exceeds it.
func (a *Accountant) SettleViolationPayment(ctx context.Context, passengerUID, purchaseToken, productID string) (*ViolationSettlement, error) {
	if purchaseToken == "" {
		return nil, apperrors.InvalidArgument("purchaseToken wajib.")
	}
	if productID == "" {
		productID = utils.ViolationFeeProductID
	}

	user, err := a.users.GetByUID(ctx, passengerUID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, apperrors.NotFound("User tidak ditemukan.")
		}
		return nil, apperrors.Internal("Gagal memuat user.", err)
	}

	if user.OutstandingViolationFee <= 0 {
		return nil, apperrors.FailedPrecondition("Tidak ada pelanggaran yang perlu dibayar.")
	}

	if err := a.verifyPurchase(ctx, productID, purchaseToken); err != nil {
		return nil, err
	}

	record, err := a.violations.OldestUnpaid(ctx, passengerUID, models.ViolationTypePassenger)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			// Outstanding fee is positive but no unpaid record backs it.
			return nil, apperrors.FailedPrecondition("Data pelanggaran tidak konsisten.")
		}
		return nil, apperrors.Internal("Gagal memuat data pelanggaran.", err)
	}

	amount := record.Amount
	if amount <= 0 {
		amount = utils.DefaultViolationFee
	}
	deduct := amount
	if deduct > user.OutstandingViolationFee {
		deduct = user.OutstandingViolationFee
	}

	newFee := user.OutstandingViolationFee - deduct
	if newFee < 0 {
		newFee = 0
	}
	newCount := user.OutstandingViolationCount - 1
	if newCount < 0 {
		newCount = 0
	}

	if err := a.violations.ApplySettlement(ctx, passengerUID, record.ID, newFee, newCount); err != nil {
		return nil, apperrors.Internal("Gagal menyimpan pembayaran pelanggaran.", err)
	}

	a.logger.LogLedgerEvent(passengerUID, "violation_settled", map[string]interface{}{
		"record_id": record.ID,
		"deducted":  deduct,
		"remaining": newFee,
	})
	return &ViolationSettlement{DeductedAmount: deduct, RemainingOutstanding: newFee}, nil
}

// RunExemptionSweep pins every allow-listed driver's contribution watermark
// to the exempt sentinel. A bad uid is logged and skipped, never aborts the
// sweep. Returns the number of drivers updated.
func (a *Accountant) RunExemptionSweep(ctx context.Context) (int, error) {
	uids, err := a.appConfig.ContributionExemptDrivers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load exempt driver list: %w", err)
	}
	if len(uids) == 0 {
		a.logger.Debug("Contribution exempt list empty, nothing to do")
		return 0, nil
	}

	updated := 0
	for _, uid := range uids {
		if uid == "" {
			continue
		}
		if err := a.users.SetContributionExempt(ctx, uid, utils.ContributionExemptValue); err != nil {
			a.logger.WithError(err).WithUID(uid).Error("Failed to mark driver contribution exempt")
			continue
		}
		updated++
	}

	if updated > 0 {
		a.logger.Infof("Contribution exemption sweep updated %d drivers", updated)
	}
	return updated, nil
}

func (a *Accountant) verifyPurchase(ctx context.Context, productID, purchaseToken string) error {
	ok, err := a.verifier.Verify(ctx, &billing.Purchase{
		PackageName:   a.packageName,
		ProductID:     productID,
		PurchaseToken: purchaseToken,
	})
	if err != nil {
		return apperrors.Internal("Gagal memverifikasi pembayaran.", err)
	}
	if !ok {
		return apperrors.FailedPrecondition("Pembayaran tidak valid.")
	}
	return nil
}
